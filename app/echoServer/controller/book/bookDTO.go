package book

type CreateBookReq struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	Category string `json:"category" validate:"required"`
	Copies   int64  `json:"copies" validate:"gte=0"`
}

type AddCopiesReq struct {
	Count int64 `json:"count" validate:"required,gt=0"`
}
