// Package domain defines the persistence models managed by the generic CRUD
// layer. These types are mapped with GORM and double as the introspection
// input for the schema package: field names, wrapper shapes, and struct tags
// drive relationship inference and form generation.
package domain

import "time"

// Model carries the ambient attributes every managed entity declares: an
// auto-assigned integer primary key, creation/update timestamps, and the
// soft-delete flag. UpdatedAt stays NULL until the first update (automatic
// update timestamps are disabled; the repository touches the column
// explicitly on partial updates).
type Model struct {
	ID        uint       `json:"id"         gorm:"primaryKey"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
	IsDeleted bool       `json:"is_deleted" gorm:"default:false;index"`
}

// GetID returns the primary key.
func (m Model) GetID() uint { return m.ID }

// IsSoftDeleted reports the soft-delete flag.
func (m Model) IsSoftDeleted() bool { return m.IsDeleted }

// SetSoftDeleted flips the soft-delete flag.
func (m *Model) SetSoftDeleted(deleted bool) { m.IsDeleted = deleted }

// Author represents a content author. The Email column is unique; deleting
// an author with remaining posts is rejected by a service hook.
//
// Fields:
//   - Name: display name (1-120 chars).
//   - Email: unique contact address.
//   - Website: optional homepage URL.
//   - Bio: optional free-form text.
//   - Posts: reverse side of Post.AuthorID (one-to-many).
type Author struct {
	Model
	Name    string  `json:"name"    gorm:"size:120;not null"             validate:"required,min=1,max=120"`
	Email   string  `json:"email"   gorm:"size:255;not null;uniqueIndex" validate:"required,email"`
	Website *string `json:"website,omitempty" gorm:"size:255"            validate:"omitempty,url"`
	Bio     *string `json:"bio,omitempty"     gorm:"type:text"`

	Posts []Post `json:"-" gorm:"foreignKey:AuthorID"`
}

// Post is a blog entry owned by an Author and labeled with Tags.
//
// Fields:
//   - Title / Content: the article itself (Content is a text column).
//   - AuthorID: foreign key to the owning author (indexed).
//   - Published / PublishedAt: publication state.
//   - Views: non-negative read counter.
//   - Rating: optional editorial score in [0,5].
type Post struct {
	Model
	Title       string     `json:"title"     gorm:"size:200;not null"  validate:"required,min=1,max=200"`
	Content     string     `json:"content"   gorm:"type:text;not null" validate:"required"`
	AuthorID    uint       `json:"author_id" gorm:"not null;index"     validate:"required"`
	Published   bool       `json:"published" gorm:"default:false"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Views       int        `json:"views"     gorm:"default:0"          validate:"gte=0"`
	Rating      *float64   `json:"rating,omitempty"                    validate:"omitempty,gte=0,lte=5"`

	// Author is the owning side of the AuthorID foreign key.
	Author Author `json:"-" gorm:"foreignKey:AuthorID;references:ID"`
	Tags   []Tag  `json:"-" gorm:"many2many:post_tags"`
}

// TableName keeps the historical table name for posts.
func (Post) TableName() string { return "blog_posts" }

// Tag is a label attached to posts via the post_tags join table.
type Tag struct {
	Model
	Name string `json:"name" gorm:"size:64;not null;uniqueIndex" validate:"required,min=1,max=64"`

	Posts []Post `json:"-" gorm:"many2many:post_tags"`
}
