package task

import "storefront/pagegen/internal/domain"

type RedirectTask struct {
	StoreID  string          `json:"store_id"`
	BuildID  string          `json:"build_id"`
	Redirect domain.Redirect `json:"redirect"`
}

func (t *RedirectTask) TaskType() string {
	return "RedirectTask"
}

func (t *RedirectTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
