package task

import "storefront/pagegen/internal/domain"

type PageTask struct {
	StoreID string                `json:"store_id"`
	BuildID string                `json:"build_id"`
	Page    domain.PageDescriptor `json:"page"`
}

func (t *PageTask) TaskType() string {
	return "PageTask"
}

func (t *PageTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
