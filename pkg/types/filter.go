package types

// Filter represents query parameters for filtering and pagination.
// ?search=stop&sort[created_at]=desc&filter[action]=cron_job.stop,cron_job.start&limit=10&offset=0
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}
