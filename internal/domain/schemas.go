package domain

// Request payload shapes for the mounted resources. Create shapes carry the
// writable fields with their binding rules; update shapes make every field
// optional so partial updates only validate the keys actually present in the
// request body.

// AuthorCreate is the payload accepted by POST /authors.
type AuthorCreate struct {
	Name    string  `json:"name"    binding:"required,min=1,max=120"`
	Email   string  `json:"email"   binding:"required,email"`
	Website *string `json:"website" binding:"omitempty,url"`
	Bio     *string `json:"bio"     binding:"omitempty"`
}

// AuthorUpdate is the payload accepted by PUT /authors/:id.
type AuthorUpdate struct {
	Name    *string `json:"name"    binding:"omitempty,min=1,max=120"`
	Email   *string `json:"email"   binding:"omitempty,email"`
	Website *string `json:"website" binding:"omitempty,url"`
	Bio     *string `json:"bio"     binding:"omitempty"`
}

// PostCreate is the payload accepted by POST /posts.
type PostCreate struct {
	Title     string   `json:"title"     binding:"required,min=1,max=200"`
	Content   string   `json:"content"   binding:"required"`
	AuthorID  uint     `json:"author_id" binding:"required"`
	Published *bool    `json:"published" binding:"omitempty"`
	Views     *int     `json:"views"     binding:"omitempty,gte=0"`
	Rating    *float64 `json:"rating"    binding:"omitempty,gte=0,lte=5"`
}

// PostUpdate is the payload accepted by PUT /posts/:id.
type PostUpdate struct {
	Title     *string  `json:"title"     binding:"omitempty,min=1,max=200"`
	Content   *string  `json:"content"   binding:"omitempty"`
	AuthorID  *uint    `json:"author_id" binding:"omitempty"`
	Published *bool    `json:"published" binding:"omitempty"`
	Views     *int     `json:"views"     binding:"omitempty,gte=0"`
	Rating    *float64 `json:"rating"    binding:"omitempty,gte=0,lte=5"`
}
