package operator

import (
	"regexp"
	"strconv"
)

// generalOperators mirrors the general-purpose regex catalog: small,
// syntactic swaps that flip a program's behavior without touching its
// shape enough to break compilation.
func generalOperators() []Op {
	return []Op{
		{
			ID: "incr_decr_swap", Category: "arithmetic",
			Pattern: regexp.MustCompile(`(\+\+|--)`),
			Rewrite: func(match string, _ []string) string {
				if match == "++" {
					return "--"
				}
				return "++"
			},
		},
		{
			ID: "continue_break_swap", Category: "statement-deletion",
			Pattern: regexp.MustCompile(`\b(continue|break)\b`),
			Rewrite: func(match string, _ []string) string {
				if match == "continue" {
					return "break"
				}
				return "continue"
			},
		},
		{
			ID: "all_of_any_of_swap", Category: "logical",
			Pattern: regexp.MustCompile(`std::(all_of|any_of)`),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "all_of" {
					return "std::any_of"
				}
				return "std::all_of"
			},
		},
		{
			ID: "min_max_swap", Category: "boundary",
			Pattern: regexp.MustCompile(`std::(min|max)\b`),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "min" {
					return "std::max"
				}
				return "std::min"
			},
		},
		{
			ID: "begin_end_swap", Category: "boundary",
			Pattern: regexp.MustCompile(`std::(begin|end)\(`),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "begin" {
					return "std::end("
				}
				return "std::begin("
			},
		},
		{
			ID: "bool_literal_swap", Category: "constant",
			Pattern: regexp.MustCompile(`\b(true|false)\b`),
			Rewrite: func(match string, _ []string) string {
				if match == "true" {
					return "false"
				}
				return "true"
			},
		},
		{
			ID: "mul_div_swap", Category: "arithmetic",
			Pattern: regexp.MustCompile(` (\*|/) `),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "*" {
					return " / "
				}
				return " * "
			},
		},
		{
			ID: "mod_to_mul", Category: "arithmetic",
			Pattern: regexp.MustCompile(` % `),
			Rewrite: func(match string, _ []string) string {
				return " * "
			},
		},
		{
			ID: "compound_assign_swap", Category: "arithmetic",
			Pattern: regexp.MustCompile(`(\+=|-=)`),
			Rewrite: func(match string, _ []string) string {
				if match == "+=" {
					return "-="
				}
				return "+="
			},
		},
		{
			ID: "relational_lt_gt_swap", Category: "relational",
			Pattern: regexp.MustCompile(` (<|>) `),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "<" {
					return " > "
				}
				return " < "
			},
		},
		{
			ID: "relational_le_ge_swap", Category: "relational",
			Pattern: regexp.MustCompile(` (<=|>=) `),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "<=" {
					return " >= "
				}
				return " <= "
			},
		},
		{
			ID: "boundary_lt_bump", Category: "boundary",
			Pattern: regexp.MustCompile(` < `),
			Rewrite: func(match string, _ []string) string {
				return " <= "
			},
		},
		{
			ID: "boundary_gt_bump", Category: "boundary",
			Pattern: regexp.MustCompile(` > `),
			Rewrite: func(match string, _ []string) string {
				return " >= "
			},
		},
		{
			ID: "bitand_bitor_swap", Category: "bitwise",
			Pattern: regexp.MustCompile(` (&|\|) `),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "&" {
					return " | "
				}
				return " & "
			},
		},
		{
			ID: "bitxor_to_bitand", Category: "bitwise",
			Pattern: regexp.MustCompile(` \^ `),
			Rewrite: func(match string, _ []string) string {
				return " & "
			},
		},
		{
			ID: "shift_swap", Category: "bitwise",
			Pattern: regexp.MustCompile(` (<<|>>) `),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "<<" {
					return " >> "
				}
				return " << "
			},
		},
		{
			ID: "logical_and_or_swap", Category: "logical",
			Pattern: regexp.MustCompile(`(&&|\|\|)`),
			Rewrite: func(match string, _ []string) string {
				if match == "&&" {
					return "||"
				}
				return "&&"
			},
		},
		{
			ID: "eq_neq_swap", Category: "relational",
			Pattern: regexp.MustCompile(`(==|!=)`),
			Rewrite: func(match string, _ []string) string {
				if match == "==" {
					return "!="
				}
				return "=="
			},
		},
		{
			ID: "add_sub_swap", Category: "arithmetic",
			Pattern: regexp.MustCompile(` (\+|-) `),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "+" {
					return " - "
				}
				return " + "
			},
		},
		{
			ID: "integer_literal_increment", Category: "constant",
			Pattern: regexp.MustCompile(`\b([0-9]+)\b`),
			Rewrite: func(match string, groups []string) string {
				n, _ := strconv.ParseUint(groups[1], 10, 64)
				return strconv.FormatUint(n+1, 10)
			},
		},
		{
			ID: "integer_literal_decrement", Category: "constant",
			Pattern: regexp.MustCompile(`\b([0-9]+)\b`),
			Rewrite: func(match string, groups []string) string {
				n, _ := strconv.ParseUint(groups[1], 10, 64)
				if n == 0 {
					return match
				}
				return strconv.FormatUint(n-1, 10)
			},
		},
		{
			ID: "integer_literal_zero", Category: "constant",
			Pattern: regexp.MustCompile(`\b([0-9]+)\b`),
			Rewrite: func(match string, groups []string) string {
				if groups[1] == "0" {
					return match
				}
				return "0"
			},
		},
		{
			ID: "condition_force_true", Category: "logical",
			Pattern: regexp.MustCompile(`\b(if|else if|while)\s*\((.+)\)`),
			Rewrite: func(match string, groups []string) string {
				return groups[1] + " (true)"
			},
		},
		{
			ID: "erase_call_removal", Category: "statement-deletion",
			Pattern: regexp.MustCompile(`\w+\.erase\([^)]*\);`),
			Rewrite: func(match string, _ []string) string {
				return ""
			},
		},
		{
			ID: "early_return_removal", Category: "statement-deletion",
			Pattern: regexp.MustCompile(`\breturn\s*;`),
			Rewrite: func(match string, _ []string) string {
				return ""
			},
		},
		{
			ID: "if_return_removal", Category: "statement-deletion",
			Pattern: regexp.MustCompile(`^\s*if\s*\(.*\)\s*return.*;\s*$`),
			Rewrite: func(match string, _ []string) string {
				return ""
			},
		},
		{
			ID: "loop_inject_break", Category: "statement-deletion",
			Pattern: regexp.MustCompile(`\b(for|while)\s*\(([^)]*)\)\s*\{`),
			Rewrite: func(match string, groups []string) string {
				return groups[1] + " (" + groups[2] + ") { break;"
			},
		},
	}
}

// securityOperators mirrors the security-focused catalog: mutations that
// target the arithmetic and bounds-checking code paths most likely to
// hide exploitable bugs.
func securityOperators() []Op {
	return []Op{
		{
			ID: "eq_to_assign", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`([^=!<>])==([^=])`),
			Rewrite: func(match string, groups []string) string {
				return groups[1] + "=" + groups[2]
			},
		},
		{
			ID: "array_bound_shrink", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`\[([0-9]+)\]`),
			Rewrite: func(match string, groups []string) string {
				n, _ := strconv.ParseUint(groups[1], 10, 64)
				if n == 0 {
					return match
				}
				return "[" + strconv.FormatUint(n-1, 10) + "]"
			},
		},
		{
			ID: "ignore_n_widen", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`\.ignore\(([0-9]+)\)`),
			Rewrite: func(match string, groups []string) string {
				n, _ := strconv.ParseUint(groups[1], 10, 64)
				return ".ignore(" + strconv.FormatUint(n+100, 10) + ")"
			},
		},
		{
			ID: "array_index_widen", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`\[i\]`),
			Rewrite: func(match string, _ []string) string {
				return "[i+5]"
			},
		},
		{
			ID: "logical_or_arg_swap", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`(\w+)\s*\|\|\s*(\w+)`),
			Rewrite: func(match string, groups []string) string {
				return groups[2] + " || " + groups[1]
			},
		},
		{
			ID: "get_selection_amount_overflow", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`GetSelectionAmount\(\)`),
			Rewrite: func(match string, _ []string) string {
				return "GetSelectionAmount() + 1"
			},
		},
		{
			ID: "reset_block_removal", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`\w*resetBlock\([^)]*\);`),
			Rewrite: func(match string, _ []string) string {
				return ""
			},
		},
		{
			ID: "median_time_past_max", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`GetMedianTimePast\(\)`),
			Rewrite: func(match string, _ []string) string {
				return "std::numeric_limits<int64_t>::max()"
			},
		},
		{
			ID: "break_removal", Category: "security", Security: true,
			Pattern: regexp.MustCompile(`\bbreak;`),
			Rewrite: func(match string, _ []string) string {
				return ""
			},
		},
	}
}

// testOperators mirrors the operator that only ever fires on unit or
// functional test files: removing an assertion-adjacent function call to
// see whether the test suite notices its own missing check.
func testOperators() []Op {
	return []Op{
		{
			ID: "test_call_removal", Category: "statement-deletion", TestOnly: true,
			Pattern: regexp.MustCompile(`\b\w+\([^;]*\);`),
			Rewrite: func(match string, _ []string) string {
				return ""
			},
		},
	}
}

