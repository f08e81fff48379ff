// services/post_service.go
package services

import (
	"errors"

	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostService struct {
	DB *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{DB: db}
}

func (s *PostService) CreatePost(c *fiber.Ctx) error {
	authorID, _ := c.Locals("user_id").(string)
	if authorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Title == "" || input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and content are required"})
	}

	post := &models.Post{
		ID:       uuid.NewString(),
		Title:    input.Title,
		Slug:     uniqueSlug(s.DB, &models.Post{}, input.Title),
		Content:  input.Content,
		AuthorID: authorID,
	}
	if err := s.DB.Create(post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create post"})
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetAllPosts lists posts, pinned first, newest within each group.
func (s *PostService) GetAllPosts(c *fiber.Ctx) error {
	var posts []models.Post
	if err := s.DB.Order("pinned DESC, created_at DESC").Find(&posts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch posts"})
	}
	return c.JSON(posts)
}

func (s *PostService) GetPost(c *fiber.Ctx) error {
	var post models.Post
	if err := s.DB.Preload("Comments").First(&post, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch post"})
	}
	return c.JSON(post)
}

func (s *PostService) UpdatePost(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var post models.Post
	if err := s.DB.First(&post, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch post"})
	}
	if post.AuthorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the author can edit a post"})
	}
	if post.Locked {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "post is locked"})
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Title != "" {
		post.Title = input.Title
	}
	if input.Content != "" {
		post.Content = input.Content
	}

	if err := s.DB.Save(&post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update post"})
	}
	return c.JSON(post)
}

func (s *PostService) DeletePost(c *fiber.Ctx) error {
	var post models.Post
	if err := s.DB.First(&post, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch post"})
	}
	if err := s.DB.Delete(&post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete post"})
	}
	return c.JSON(fiber.Map{"message": "post deleted"})
}

func (s *PostService) TogglePin(c *fiber.Ctx) error {
	return s.toggleFlag(c, "pinned")
}

func (s *PostService) ToggleLock(c *fiber.Ctx) error {
	return s.toggleFlag(c, "locked")
}

func (s *PostService) toggleFlag(c *fiber.Ctx, column string) error {
	var post models.Post
	if err := s.DB.First(&post, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch post"})
	}

	var value bool
	switch column {
	case "pinned":
		value = !post.Pinned
		post.Pinned = value
	case "locked":
		value = !post.Locked
		post.Locked = value
	}
	if err := s.DB.Model(&post).Update(column, value).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update post"})
	}
	return c.JSON(post)
}

func (s *PostService) GetComments(c *fiber.Ctx) error {
	postID := c.Params("post_id")

	var post models.Post
	if err := s.DB.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch post"})
	}

	var comments []models.Comment
	if err := s.DB.Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch comments"})
	}
	return c.JSON(comments)
}

func (s *PostService) AddComment(c *fiber.Ctx) error {
	authorID, _ := c.Locals("user_id").(string)
	if authorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var post models.Post
	if err := s.DB.First(&post, "id = ?", c.Params("post_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch post"})
	}
	if post.Locked {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "post is locked"})
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content is required"})
	}

	comment := &models.Comment{
		ID:       uuid.NewString(),
		PostID:   post.ID,
		AuthorID: authorID,
		Content:  input.Content,
	}
	if err := s.DB.Create(comment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create comment"})
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment allows the comment author or a manager to remove a comment.
func (s *PostService) DeleteComment(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	roles, _ := c.Locals("user_roles").([]string)

	var comment models.Comment
	if err := s.DB.Where("post_id = ?", c.Params("post_id")).First(&comment, "id = ?", c.Params("comment_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "comment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch comment"})
	}

	allowed := comment.AuthorID == userID
	for _, r := range roles {
		if r == models.RoleManager || r == models.RoleAdmin {
			allowed = true
		}
	}
	if !allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not allowed to delete this comment"})
	}

	if err := s.DB.Delete(&comment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete comment"})
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}
