package ui

import (
	"regexp"
	"strings"
)

// MergeClasses joins utility class lists left to right. When two classes
// target the same property under the same variants, the later one wins.
// Classes it does not recognise are always kept.
func MergeClasses(lists ...string) string {
	var classes []string
	for _, list := range lists {
		classes = append(classes, strings.Fields(list)...)
	}

	seen := make(map[string]bool)
	kept := make([]string, len(classes))
	for i := len(classes) - 1; i >= 0; i-- {
		class := classes[i]
		variants, important, utility := splitClass(class)
		group := classGroup(utility)
		if group == "" {
			if seen["="+class] {
				continue
			}
			seen["="+class] = true
			kept[i] = class
			continue
		}

		prefix := variants
		if important {
			prefix += "!"
		}
		if seen[prefix+group] {
			continue
		}
		seen[prefix+group] = true
		for _, conflict := range conflictingGroups[group] {
			seen[prefix+conflict] = true
		}
		kept[i] = class
	}

	out := make([]string, 0, len(classes))
	for _, class := range kept {
		if class != "" {
			out = append(out, class)
		}
	}
	return strings.Join(out, " ")
}

// splitClass separates "hover:file:!bg-primary" into its variant prefix
// ("hover:file:"), the important flag and the bare utility. Colons inside
// square brackets belong to arbitrary values, not variants.
func splitClass(class string) (string, bool, string) {
	depth, last := 0, -1
	for i, r := range class {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ':':
			if depth == 0 {
				last = i
			}
		}
	}

	variants, utility := "", class
	if last >= 0 {
		variants, utility = class[:last+1], class[last+1:]
	}

	important := false
	if strings.HasPrefix(utility, "!") {
		important, utility = true, utility[1:]
	} else if strings.HasSuffix(utility, "!") {
		important, utility = true, strings.TrimSuffix(utility, "!")
	}
	return variants, important, utility
}

var displayUtilities = map[string]bool{
	"block": true, "inline-block": true, "inline": true, "flex": true,
	"inline-flex": true, "grid": true, "inline-grid": true, "contents": true,
	"table": true, "hidden": true,
}

var groupPatterns = []struct {
	re    *regexp.Regexp
	group string
}{
	{regexp.MustCompile(`^border(-(0|2|4|8|\[[^\]]+px\]))?$`), "border-w"},
	{regexp.MustCompile(`^border-([xytrbl])(-\d+)?$`), "border-w-$1"},
	{regexp.MustCompile(`^border-(solid|dashed|dotted|double|hidden|none)$`), "border-style"},
	{regexp.MustCompile(`^border-`), "border-color"},
	{regexp.MustCompile(`^rounded(-(none|sm|md|lg|xl|2xl|3xl|full))?$`), "rounded"},
	{regexp.MustCompile(`^(p|px|py|pt|pr|pb|pl|m|mx|my|mt|mr|mb|ml)-`), "$1"},
	{regexp.MustCompile(`^(h|w|min-h|min-w|max-h|max-w|size)-`), "$1"},
	{regexp.MustCompile(`^text-(xs|sm|base|lg|xl|\dxl)$`), "font-size"},
	{regexp.MustCompile(`^text-(left|center|right|justify|start|end)$`), "text-align"},
	{regexp.MustCompile(`^text-`), "text-color"},
	{regexp.MustCompile(`^font-(thin|extralight|light|normal|medium|semibold|bold|extrabold|black)$`), "font-weight"},
	{regexp.MustCompile(`^bg-`), "bg-color"},
	{regexp.MustCompile(`^ring-offset-\d+$`), "ring-offset-w"},
	{regexp.MustCompile(`^ring-offset-`), "ring-offset-color"},
	{regexp.MustCompile(`^ring(-\d+)?$`), "ring-w"},
	{regexp.MustCompile(`^ring-`), "ring-color"},
	{regexp.MustCompile(`^outline(-none)?$`), "outline-style"},
	{regexp.MustCompile(`^opacity-`), "opacity"},
	{regexp.MustCompile(`^cursor-`), "cursor"},
	{regexp.MustCompile(`^appearance-`), "appearance"},
	{regexp.MustCompile(`^transition(-|$)`), "transition"},
}

var conflictingGroups = map[string][]string{
	"p":        {"px", "py", "pt", "pr", "pb", "pl"},
	"px":       {"pr", "pl"},
	"py":       {"pt", "pb"},
	"m":        {"mx", "my", "mt", "mr", "mb", "ml"},
	"mx":       {"mr", "ml"},
	"my":       {"mt", "mb"},
	"size":     {"w", "h"},
	"border-w": {"border-w-x", "border-w-y", "border-w-t", "border-w-r", "border-w-b", "border-w-l"},
}

func classGroup(utility string) string {
	if strings.HasPrefix(utility, "[") && strings.HasSuffix(utility, "]") {
		if prop, _, ok := strings.Cut(utility[1:len(utility)-1], ":"); ok && prop != "" {
			return "arbitrary-" + prop
		}
		return ""
	}
	if displayUtilities[utility] {
		return "display"
	}
	for _, p := range groupPatterns {
		if m := p.re.FindStringSubmatchIndex(utility); m != nil {
			return string(p.re.ExpandString(nil, p.group, utility, m))
		}
	}
	return ""
}
