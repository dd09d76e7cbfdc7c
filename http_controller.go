package library

import (
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// HTMLController serves the browser surface. Every mutating flow is a
// form POST that answers with a 303 redirect, passing any user-facing
// message through the msg query parameter.
type HTMLController struct {
	repo          RepositoryManager
	auth          Authenticator
	register      *RegisterUserHandler
	change        *ChangeCredentialsHandler
	deleteAccount *DeleteAccountHandler
	logger        Logger
}

func NewHTMLController(repo RepositoryManager, auth Authenticator) *HTMLController {
	return &HTMLController{
		repo:          repo,
		auth:          auth,
		register:      NewRegisterUserHandler(repo),
		change:        NewChangeCredentialsHandler(repo),
		deleteAccount: NewDeleteAccountHandler(repo),
		logger:        defLogger{},
	}
}

func (ctrl *HTMLController) WithLogger(logger Logger) *HTMLController {
	ctrl.logger = logger
	return ctrl
}

// Home sends visitors to the login page.
func (ctrl *HTMLController) Home(c *fiber.Ctx) error {
	return c.Redirect("/login", fiber.StatusFound)
}

// LoginShow renders the login form. A request that still carries a
// valid session cookie skips the form and lands on the menu.
func (ctrl *HTMLController) LoginShow(c *fiber.Ctx) error {
	msg := c.Query("msg")

	if raw := c.Cookies(AccessTokenCookie); raw != "" {
		session, err := ctrl.auth.SessionFromToken(raw)
		if err == nil {
			user, err := ctrl.repo.Users().GetByUsername(c.UserContext(), session.GetUsername())
			if err == nil {
				return c.Redirect("/menu/"+url.PathEscape(user.Author), fiber.StatusSeeOther)
			}
			msg = "Account no longer exists, please register again"
		} else {
			msg = "Session expired, please log in again"
		}
		ClearAuthCookie(c)
	}

	return c.Render("login", fiber.Map{
		"title": "Login",
		"msg":   msg,
	})
}

// LoginForm is the credentials payload shared by the HTML and JSON
// login routes. Author is only present on the HTML form.
type LoginForm struct {
	Author   string `form:"author" json:"author"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login request payload")
}

// TokenPost handles the HTML login form. Beyond the password check it
// verifies that the submitted author label matches the account's, so a
// user cannot open another author's menu by typing their own
// credentials with a different label.
func (ctrl *HTMLController) TokenPost(c *fiber.Ctx) error {
	payload := LoginForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, "/login", "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, "/login", err.Message)
	}

	username := strings.TrimSpace(payload.Username)

	user, err := ctrl.repo.Users().GetByUsername(c.UserContext(), username)
	if err != nil {
		return redirectWithMsg(c, "/login", "Invalid username, author or password")
	}

	if !strings.EqualFold(strings.TrimSpace(user.Author), strings.TrimSpace(payload.Author)) {
		ctrl.logger.Debug("login rejected", "username", username, "error", ErrAuthorMismatch)
		return redirectWithMsg(c, "/login", "Invalid username, author or password")
	}

	token, err := ctrl.auth.Login(c.UserContext(), username, payload.Password)
	if err != nil {
		ctrl.logger.Debug("login rejected", "username", username, "error", err)
		return redirectWithMsg(c, "/login", "Invalid username, author or password")
	}

	SetAuthCookie(c, token, ctrl.auth.CookieMaxAge())

	return c.Redirect("/menu/"+url.PathEscape(user.Author), fiber.StatusSeeOther)
}

// RegisterShow renders the registration form.
func (ctrl *HTMLController) RegisterShow(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{
		"title": "Register",
		"msg":   c.Query("msg"),
	})
}

// RegisterForm is the account creation payload for both surfaces.
type RegisterForm struct {
	Author       string `form:"author" json:"author"`
	Username     string `form:"username" json:"username"`
	Password     string `form:"password" json:"password"`
	ClientID     string `form:"client_id" json:"client_id"`
	ClientSecret string `form:"client_secret" json:"client_secret"`
}

// Validate will run validation rules
func (r RegisterForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Author, validation.Required, validation.Length(3, 30)),
			validation.Field(&r.Username, validation.Required),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid registration payload")
}

// RegisterPost creates the account and sends the visitor to the login
// page.
func (ctrl *HTMLController) RegisterPost(c *fiber.Ctx) error {
	payload := RegisterForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, "/register", "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, "/register", err.Message)
	}

	_, err := ctrl.register.Execute(c.UserContext(), RegisterUserMessage{
		Author:       payload.Author,
		Username:     payload.Username,
		Password:     payload.Password,
		ClientID:     payload.ClientID,
		ClientSecret: payload.ClientSecret,
	})

	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return redirectWithMsg(c, "/register", "Username already taken")
		}
		ctrl.logger.Error("registration failed", "username", payload.Username, "error", err)
		return redirectWithMsg(c, "/register", "Registration failed, please try again")
	}

	return redirectWithMsg(c, "/login", "Account created, please log in")
}

// RegisterDeleteShow renders the self-service account deletion form.
func (ctrl *HTMLController) RegisterDeleteShow(c *fiber.Ctx) error {
	return c.Render("register-delete", fiber.Map{
		"title": "Delete account",
		"msg":   c.Query("msg"),
	})
}

// DeleteAccountForm asks for the credentials of the account to remove.
type DeleteAccountForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r DeleteAccountForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid account deletion payload")
}

// RegisterDeletePost removes an account after verifying its password.
func (ctrl *HTMLController) RegisterDeletePost(c *fiber.Ctx) error {
	payload := DeleteAccountForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, "/register-delete", "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, "/register-delete", err.Message)
	}

	err := ctrl.deleteAccount.Execute(c.UserContext(), DeleteAccountMessage{
		Username: payload.Username,
		Password: payload.Password,
	})

	if err != nil {
		return redirectWithMsg(c, "/register-delete", "Account not found")
	}

	ClearAuthCookie(c)

	return redirectWithMsg(c, "/login", "Account deleted")
}

// Menu renders the author's landing page.
func (ctrl *HTMLController) Menu(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	author, _ := url.PathUnescape(c.Params("author"))

	return c.Render("menu", fiber.Map{
		"title":    "Menu",
		"author":   author,
		"user":     user,
		"is_admin": user.IsAdmin(),
	})
}

// SettingUser renders the account settings hub.
func (ctrl *HTMLController) SettingUser(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	author, _ := url.PathUnescape(c.Params("author"))

	return c.Render("setting-user", fiber.Map{
		"title":  "Settings",
		"author": author,
		"user":   user,
	})
}

// Logout clears the session cookie and returns to the login page.
func (ctrl *HTMLController) Logout(c *fiber.Ctx) error {
	ClearAuthCookie(c)
	return redirectWithMsg(c, "/login", "Logged out")
}

// ChangeNameShow renders the credentials change form.
func (ctrl *HTMLController) ChangeNameShow(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	author, _ := url.PathUnescape(c.Params("author"))

	return c.Render("change-name", fiber.Map{
		"title":  "Change credentials",
		"author": author,
		"user":   user,
		"msg":    c.Query("msg"),
	})
}

// ChangeNameForm carries the replacement credentials.
type ChangeNameForm struct {
	NewUsername string `form:"new_user" json:"new_user"`
	NewPassword string `form:"new_password" json:"new_password"`
	NewAuthor   string `form:"new_author" json:"new_author"`
}

// Validate will run validation rules
func (r ChangeNameForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.NewUsername, validation.Required),
			validation.Field(&r.NewPassword, validation.Required),
		)
	}, "Invalid credentials change payload")
}

// ChangeNamePost renames the account and re-issues the session token
// so the cookie keeps matching the stored username.
func (ctrl *HTMLController) ChangeNamePost(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	author, _ := url.PathUnescape(c.Params("author"))
	changePath := "/change-name/" + url.PathEscape(author)

	payload := ChangeNameForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, changePath, "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, changePath, err.Message)
	}

	updated, err := ctrl.change.Execute(c.UserContext(), ChangeCredentialsMessage{
		UserID:      user.ID,
		NewUsername: payload.NewUsername,
		NewPassword: payload.NewPassword,
		NewAuthor:   payload.NewAuthor,
	})

	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return redirectWithMsg(c, changePath, "Username already taken")
		}
		ctrl.logger.Error("credentials change failed", "user_id", user.ID, "error", err)
		return redirectWithMsg(c, changePath, "Could not update credentials")
	}

	token, err := ctrl.auth.TokenService().Generate(NewIdentityFromUser(updated))
	if err != nil {
		ClearAuthCookie(c)
		return redirectToLogin(c, "Please log in again")
	}

	SetAuthCookie(c, token, ctrl.auth.CookieMaxAge())

	target := updated.Author
	if target == "" {
		target = author
	}

	return c.Redirect("/setting-user/"+url.PathEscape(target), fiber.StatusSeeOther)
}

// DataUser shows the account's stored profile. Only the username is
// displayed; passwords exist solely as hashes.
func (ctrl *HTMLController) DataUser(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	author, _ := url.PathUnescape(c.Params("author"))

	return c.Render("data-user", fiber.Map{
		"title":  "Account data",
		"author": author,
		"user":   user,
	})
}

// DeleteRegisterShow renders the confirmation page for deleting the
// logged-in account.
func (ctrl *HTMLController) DeleteRegisterShow(c *fiber.Ctx) error {
	author, _ := url.PathUnescape(c.Params("author"))

	return c.Render("delete-register", fiber.Map{
		"title":    "Delete account",
		"username": author,
		"msg":      c.Query("msg"),
	})
}

// DeleteRegisterPost removes the logged-in account and ends the
// session.
func (ctrl *HTMLController) DeleteRegisterPost(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	if err := ctrl.repo.Users().DeleteByID(c.UserContext(), user.ID); err != nil {
		author, _ := url.PathUnescape(c.Params("author"))
		return redirectWithMsg(c, "/delete-register/"+url.PathEscape(author), "User not found")
	}

	ClearAuthCookie(c)

	return redirectWithMsg(c, "/login", "Account deleted")
}

// CreateBookShow renders the book creation form.
func (ctrl *HTMLController) CreateBookShow(c *fiber.Ctx) error {
	author, _ := url.PathUnescape(c.Params("author"))

	return c.Render("create-book", fiber.Map{
		"title":  "Create book",
		"author": author,
		"msg":    c.Query("msg"),
	})
}

// CreateBookForm is the HTML payload for adding a book under the
// author in the URL.
type CreateBookForm struct {
	Title string `form:"title" json:"title"`
	Pages int    `form:"pages" json:"pages"`
}

// Validate will run validation rules
func (r CreateBookForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Required),
			validation.Field(&r.Pages, validation.Required, validation.Min(11)),
		)
	}, "Invalid book payload, pages must be greater than 10")
}

// CreateBookPost adds a book to the author's shelf. The author in the
// URL must match the logged-in account's label.
func (ctrl *HTMLController) CreateBookPost(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	author, _ := url.PathUnescape(c.Params("author"))
	if !strings.EqualFold(strings.TrimSpace(author), strings.TrimSpace(user.Author)) {
		return redirectToLogin(c, "Please log in first")
	}

	createPath := "/create-book/" + url.PathEscape(author)

	payload := CreateBookForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, createPath, "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, createPath, err.Message)
	}

	_, err = ctrl.repo.Books().CreateBook(c.UserContext(), &Book{
		Title:  payload.Title,
		Author: author,
		Pages:  payload.Pages,
	})

	if err != nil {
		if errors.Is(err, ErrDuplicateBook) {
			return redirectWithMsg(c, createPath, "Book already exists")
		}
		ctrl.logger.Error("book creation failed", "title", payload.Title, "error", err)
		return redirectWithMsg(c, createPath, "Could not create book")
	}

	return c.Redirect("/menu/"+url.PathEscape(author), fiber.StatusSeeOther)
}

// UpdateBookShow renders the book update form.
func (ctrl *HTMLController) UpdateBookShow(c *fiber.Ctx) error {
	author, _ := url.PathUnescape(c.Params("author"))

	return c.Render("update-book", fiber.Map{
		"title":  "Update book",
		"author": author,
		"msg":    c.Query("msg"),
	})
}

// UpdateBookForm retitles one of the author's books.
type UpdateBookForm struct {
	OldTitle string `form:"old_title" json:"old_title"`
	NewTitle string `form:"new_title" json:"new_title"`
	NewPages int    `form:"new_pages" json:"new_pages"`
}

// Validate will run validation rules
func (r UpdateBookForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.OldTitle, validation.Required),
			validation.Field(&r.NewTitle, validation.Required),
			validation.Field(&r.NewPages, validation.Required, validation.Min(11)),
		)
	}, "Invalid book payload, pages must be greater than 10")
}

// UpdateBookPost locates the book under the author in the URL and
// rewrites its title and page count.
func (ctrl *HTMLController) UpdateBookPost(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	author, _ := url.PathUnescape(c.Params("author"))
	if !strings.EqualFold(strings.TrimSpace(author), strings.TrimSpace(user.Author)) {
		return redirectToLogin(c, "Please log in first")
	}

	updatePath := "/update-book/" + url.PathEscape(author)

	payload := UpdateBookForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, updatePath, "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, updatePath, err.Message)
	}

	book, err := ctrl.repo.Books().GetByTitleAuthor(c.UserContext(), payload.OldTitle, author)
	if err != nil {
		return redirectWithMsg(c, updatePath, "Book not found")
	}

	book.Title = payload.NewTitle
	book.Pages = payload.NewPages

	if _, err := ctrl.repo.Books().UpdateBook(c.UserContext(), book); err != nil {
		if errors.Is(err, ErrDuplicateBook) {
			return redirectWithMsg(c, updatePath, "Book already exists")
		}
		ctrl.logger.Error("book update failed", "title", payload.OldTitle, "error", err)
		return redirectWithMsg(c, updatePath, "Could not update book")
	}

	return c.Redirect("/menu/"+url.PathEscape(author), fiber.StatusSeeOther)
}

// DeleteBookShow renders the book deletion form.
func (ctrl *HTMLController) DeleteBookShow(c *fiber.Ctx) error {
	author, _ := url.PathUnescape(c.Params("author"))

	return c.Render("delete-book", fiber.Map{
		"title":  "Delete book",
		"author": author,
		"msg":    c.Query("msg"),
	})
}

// DeleteBookForm names the book to remove from the author's shelf.
type DeleteBookForm struct {
	Title string `form:"title" json:"title"`
}

// Validate will run validation rules
func (r DeleteBookForm) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Required),
		)
	}, "Invalid book payload")
}

// DeleteBookPost removes the named book from the author's shelf. Like
// the other shelf mutations it requires the URL author to match the
// logged-in account's label.
func (ctrl *HTMLController) DeleteBookPost(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return redirectToLogin(c, "Please log in first")
	}

	author, _ := url.PathUnescape(c.Params("author"))
	if !strings.EqualFold(strings.TrimSpace(author), strings.TrimSpace(user.Author)) {
		return redirectToLogin(c, "Please log in first")
	}

	deletePath := "/delete-book/" + url.PathEscape(author)

	payload := DeleteBookForm{}
	if err := c.BodyParser(&payload); err != nil {
		return redirectWithMsg(c, deletePath, "Invalid form submission")
	}

	if err := payload.Validate(); err != nil {
		return redirectWithMsg(c, deletePath, err.Message)
	}

	if err := ctrl.repo.Books().DeleteByTitleAuthor(c.UserContext(), payload.Title, author); err != nil {
		return redirectWithMsg(c, deletePath, "Book not found")
	}

	return c.Redirect("/menu/"+url.PathEscape(author), fiber.StatusSeeOther)
}

// GetBooks is the public catalog search: every book whose author label
// contains the term, no login required.
func (ctrl *HTMLController) GetBooks(c *fiber.Ctx) error {
	term, _ := url.PathUnescape(c.Params("author"))

	var records []*Book
	if strings.TrimSpace(term) != "" {
		var err error
		records, err = ctrl.repo.Books().SearchByAuthor(c.UserContext(), term)
		if err != nil {
			ctrl.logger.Error("book search failed", "term", term, "error", err)
			return c.Render("errors/500", fiber.Map{
				"title":   "Error",
				"message": "Could not search books",
			})
		}
	}

	return c.Render("get-books", fiber.Map{
		"title":  "Find books",
		"author": term,
		"books":  records,
	})
}

// BooksByAuthor lists an author's shelf, exact label match.
func (ctrl *HTMLController) BooksByAuthor(c *fiber.Ctx) error {
	author, _ := url.PathUnescape(c.Params("author"))

	records, err := ctrl.repo.Books().ListByAuthor(c.UserContext(), author)
	if err != nil {
		ctrl.logger.Error("book listing failed", "author", author, "error", err)
		return c.Render("errors/500", fiber.Map{
			"title":   "Error",
			"message": "Could not list books",
		})
	}

	return c.Render("books-author", fiber.Map{
		"title":  "Books by " + author,
		"author": author,
		"books":  records,
	})
}
