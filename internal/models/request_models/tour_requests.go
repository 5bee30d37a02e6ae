package request_models

type ListToursQuery struct {
	Sort   string `form:"sort"`
	Fields string `form:"fields"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
