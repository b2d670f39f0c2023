// File: internal/config/items.go
package config

import (
	"strings"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// BuildItems expands the feedback configuration into the ordered list of
// submission items for a run. Label categories pair subjects with teachers by
// position. A subject listed twice keeps its first position and takes the
// teacher paired with its last occurrence.
func BuildItems(fb FeedbackConfig) []schemas.SubmissionItem {
	var items []schemas.SubmissionItem
	for _, category := range schemas.Categories {
		if category == schemas.CategoryMentor {
			if fb.Mentor.Department != "" || fb.Mentor.Name != "" {
				items = append(items, schemas.SubmissionItem{
					Category:       schemas.CategoryMentor,
					PrimaryLabel:   fb.Mentor.Department,
					SecondaryLabel: fb.Mentor.Name,
					Required:       fb.Mentor.Department != "" && fb.Mentor.Name != "",
				})
			}
			continue
		}
		items = append(items, pairItems(category, fb.List(category))...)
	}
	return items
}

// List returns the subject/teacher list for a label category.
func (fb FeedbackConfig) List(category schemas.Category) CategoryList {
	switch category {
	case schemas.CategoryTheory:
		return fb.Theory
	case schemas.CategoryLab:
		return fb.Lab
	case schemas.CategoryTeaching:
		return fb.Teaching
	default:
		return CategoryList{}
	}
}

func pairItems(category schemas.Category, list CategoryList) []schemas.SubmissionItem {
	subjects := SplitList(list.Subjects)
	teachers := SplitList(list.Teachers)

	position := make(map[string]int, len(subjects))
	items := make([]schemas.SubmissionItem, 0, len(subjects))
	for i, subject := range subjects {
		teacher := ""
		if i < len(teachers) {
			teacher = teachers[i]
		}
		if idx, seen := position[subject]; seen {
			items[idx].SecondaryLabel = teacher
			continue
		}
		position[subject] = len(items)
		items = append(items, schemas.SubmissionItem{
			Category:       category,
			PrimaryLabel:   subject,
			SecondaryLabel: teacher,
			Required:       true,
		})
	}
	return items
}

// ConfiguredCounts reports how many items each category was configured with.
// Mentor feedback counts only when both department and name are present.
func ConfiguredCounts(items []schemas.SubmissionItem) map[schemas.Category]int {
	counts := make(map[schemas.Category]int, len(schemas.Categories))
	for _, c := range schemas.Categories {
		counts[c] = 0
	}
	for _, item := range items {
		if item.Required {
			counts[item.Category]++
		}
	}
	return counts
}

// ConfiguredSubjects lists the subject codes of one label category, upper cased
// for comparison against portal option values.
func ConfiguredSubjects(items []schemas.SubmissionItem, category schemas.Category) []string {
	var out []string
	for _, item := range items {
		if item.Category == category {
			out = append(out, strings.ToUpper(item.PrimaryLabel))
		}
	}
	return out
}
