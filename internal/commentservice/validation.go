package commentservice

import (
	"github.com/ThilinaV98/blog-platform/internal/common"
)

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
	v.Check(v.CheckStringLength(content, 1, 2000), "content", "must not be more than 2000 characters long")
}

func validateSort(v *common.Validator, sort string) {
	v.Check(common.In(sort, SortNewest, SortOldest), "sort", "must be newest or oldest")
}

func validateID(v *common.Validator, id int64, name string) {
	v.Check(id > 0, name, "must be greater than zero")
}
