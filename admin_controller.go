package library

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// AdminController serves the catalog-wide management pages. Every
// route here sits behind the cookie gate plus the admin check; the
// error page is the one exception and only needs a session.
type AdminController struct {
	repo          RepositoryManager
	deleteAccount *DeleteAccountHandler
	logger        Logger
}

func NewAdminController(repo RepositoryManager) *AdminController {
	return &AdminController{
		repo:          repo,
		deleteAccount: NewDeleteAccountHandler(repo),
		logger:        defLogger{},
	}
}

func (ctrl *AdminController) WithLogger(logger Logger) *AdminController {
	ctrl.logger = logger
	return ctrl
}

// Panel renders the admin menu.
func (ctrl *AdminController) Panel(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	return c.Render("admin", fiber.Map{
		"title": "Admin",
		"user":  user,
	})
}

// AccessError tells a non-admin session it cannot enter the admin
// area. An admin hitting it by hand is bounced into the panel.
func (ctrl *AdminController) AccessError(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	if user.IsAdmin() {
		return c.Redirect("/admin", fiber.StatusSeeOther)
	}

	return c.Render("admin-error", fiber.Map{
		"title": "Access denied",
		"user":  user,
		"msg":   "This page is reserved for the administrator",
	})
}

// CreateBookShow renders the admin book creation form.
func (ctrl *AdminController) CreateBookShow(c *fiber.Ctx) error {
	return c.Render("admin-create-book", fiber.Map{
		"title": "Create book",
		"msg":   c.Query("msg"),
	})
}

// AdminBookForm is the admin payload for creating a book under any
// author.
type AdminBookForm struct {
	Author string `form:"author" json:"author"`
	Title  string `form:"title" json:"title"`
	Pages  int    `form:"pages" json:"pages"`
}

// Validate will run validation rules
func (r AdminBookForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Author, validation.Required, validation.Length(3, 30)),
			validation.Field(&r.Title, validation.Required),
			validation.Field(&r.Pages, validation.Required, validation.Min(11)),
		)
	}, "Invalid book payload, pages must be greater than 10")
}

// CreateBookPost adds a book on behalf of any author.
func (ctrl *AdminController) CreateBookPost(c *fiber.Ctx) error {
	payload := AdminBookForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, "/admin-create-book", "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, "/admin-create-book", err.Message)
	}

	_, err := ctrl.repo.Books().CreateBook(c.UserContext(), &Book{
		Title:  payload.Title,
		Author: payload.Author,
		Pages:  payload.Pages,
	})

	if err != nil {
		if errors.Is(err, ErrDuplicateBook) {
			return redirectWithMsg(c, "/admin-create-book", "Book already exists")
		}
		ctrl.logger.Error("admin book creation failed", "title", payload.Title, "error", err)
		return redirectWithMsg(c, "/admin-create-book", "Could not create book")
	}

	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// UpdateBookShow renders the admin book update form.
func (ctrl *AdminController) UpdateBookShow(c *fiber.Ctx) error {
	return c.Render("admin-update-book", fiber.Map{
		"title": "Update book",
		"msg":   c.Query("msg"),
	})
}

// AdminUpdateBookForm relocates a book: the old pair finds it, the new
// values replace author, title and pages at once.
type AdminUpdateBookForm struct {
	OldAuthor string `form:"old_author" json:"old_author"`
	OldTitle  string `form:"old_title" json:"old_title"`
	NewAuthor string `form:"new_author" json:"new_author"`
	NewTitle  string `form:"new_title" json:"new_title"`
	NewPages  int    `form:"new_pages" json:"new_pages"`
}

// Validate will run validation rules
func (r AdminUpdateBookForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.OldAuthor, validation.Required),
			validation.Field(&r.OldTitle, validation.Required),
			validation.Field(&r.NewAuthor, validation.Required, validation.Length(3, 30)),
			validation.Field(&r.NewTitle, validation.Required),
			validation.Field(&r.NewPages, validation.Required, validation.Min(11)),
		)
	}, "Invalid book payload, pages must be greater than 10")
}

// UpdateBookPost rewrites any book in the catalog.
func (ctrl *AdminController) UpdateBookPost(c *fiber.Ctx) error {
	payload := AdminUpdateBookForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, "/admin-update-book", "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, "/admin-update-book", err.Message)
	}

	book, err := ctrl.repo.Books().GetByTitleAuthor(c.UserContext(), payload.OldTitle, payload.OldAuthor)
	if err != nil {
		return redirectWithMsg(c, "/admin-update-book", "Book not found")
	}

	book.Author = payload.NewAuthor
	book.Title = payload.NewTitle
	book.Pages = payload.NewPages

	if _, err := ctrl.repo.Books().UpdateBook(c.UserContext(), book); err != nil {
		if errors.Is(err, ErrDuplicateBook) {
			return redirectWithMsg(c, "/admin-update-book", "Book already exists")
		}
		ctrl.logger.Error("admin book update failed", "title", payload.OldTitle, "error", err)
		return redirectWithMsg(c, "/admin-update-book", "Could not update book")
	}

	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// DeleteBookShow renders the admin book deletion form.
func (ctrl *AdminController) DeleteBookShow(c *fiber.Ctx) error {
	return c.Render("admin-delete-book", fiber.Map{
		"title": "Delete book",
		"msg":   c.Query("msg"),
	})
}

// AdminDeleteBookForm names the (author, title) pair to remove.
type AdminDeleteBookForm struct {
	Author string `form:"author" json:"author"`
	Title  string `form:"title" json:"title"`
}

// Validate will run validation rules
func (r AdminDeleteBookForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Author, validation.Required),
			validation.Field(&r.Title, validation.Required),
		)
	}, "Invalid book payload")
}

// DeleteBookPost removes any book from the catalog.
func (ctrl *AdminController) DeleteBookPost(c *fiber.Ctx) error {
	payload := AdminDeleteBookForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, "/admin-delete-book", "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, "/admin-delete-book", err.Message)
	}

	if err := ctrl.repo.Books().DeleteByTitleAuthor(c.UserContext(), payload.Title, payload.Author); err != nil {
		return redirectWithMsg(c, "/admin-delete-book", "Book not found")
	}

	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// RegisterDeleteShow lists every account so the admin can pick one to
// remove.
func (ctrl *AdminController) RegisterDeleteShow(c *fiber.Ctx) error {
	records, err := ctrl.repo.Users().ListAll(c.UserContext())
	if err != nil {
		ctrl.logger.Error("user listing failed", "error", err)
		return c.Render("errors/500", fiber.Map{
			"title":   "Error",
			"message": "Could not list accounts",
		})
	}

	return c.Render("admin-register-delete", fiber.Map{
		"title": "Delete account",
		"users": records,
		"msg":   c.Query("msg"),
	})
}

// AdminDeleteAccountForm names the account to remove, matched
// case-insensitively and trimmed.
type AdminDeleteAccountForm struct {
	Username string `form:"username" json:"username"`
}

// Validate will run validation rules
func (r AdminDeleteAccountForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required),
		)
	}, "Invalid account deletion payload")
}

// RegisterDeletePost removes any account without a password check.
func (ctrl *AdminController) RegisterDeletePost(c *fiber.Ctx) error {
	payload := AdminDeleteAccountForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, "/admin-register-delete", "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, "/admin-register-delete", err.Message)
	}

	err := ctrl.deleteAccount.Execute(c.UserContext(), DeleteAccountMessage{
		Username:      payload.Username,
		AdminOverride: true,
	})

	if err != nil {
		return redirectWithMsg(c, "/admin-register-delete", "Account not found")
	}

	return redirectWithMsg(c, "/admin-register-delete", "Account deleted")
}

func redirectWithMsg(c *fiber.Ctx, path, msg string) error {
	return c.Redirect(path+"?msg="+url.QueryEscape(msg), fiber.StatusSeeOther)
}
