package postservice

import (
	"github.com/ThilinaV98/blog-platform/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 3, 200), "title", "must be between 3 and 200 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateStatus(v *common.Validator, status PostStatus) {
	v.Check(common.In(status, StatusDraft, StatusPublished, StatusArchived), "status", "must be draft, published, or archived")
}

func validateTags(v *common.Validator, tags []string) {
	v.Check(len(tags) <= 10, "tags", "must not contain more than 10 tags")

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		v.Check(tag != "", "tags", "must not contain empty tags")
		v.Check(!seen[tag], "tags", "must not contain duplicate tags")
		seen[tag] = true
	}
}

func validateID(v *common.Validator, id int64, name string) {
	v.Check(id > 0, name, "must be greater than zero")
}
