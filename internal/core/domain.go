package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	IconWallet       Icon = "Wallet"
	IconShoppingCart Icon = "ShoppingCart"
	IconHome         Icon = "Home"
	IconCar          Icon = "Car"
	IconCoffee       Icon = "Coffee"
	IconGift         Icon = "Gift"
	IconFilm         Icon = "Film"
	IconBookOpen     Icon = "BookOpen"
	IconUtensils     Icon = "Utensils"
	IconPlane        Icon = "Plane"
)

// DefaultColor is used for categories without a color and for expenses whose
// category no longer exists.
const DefaultColor = "#64748B"

type (
	// Icon is the symbolic name of a category glyph.
	Icon string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  Icon   `json:"icon"`
	}

	// CategoryDraft holds every Category field except the id.
	CategoryDraft struct {
		Name  string
		Color string
		Icon  Icon
	}

	Expense struct {
		ID          string `json:"id"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"` // Category ID
		Description string `json:"description"`
		Date        Date   `json:"date"`
	}

	// ExpenseDraft holds every Expense field except the id.
	ExpenseDraft struct {
		Amount      Money
		Category    string
		Description string
		Date        Date
	}
)

var (
	ErrInvalidAmount    = errors.New("please enter a valid amount")
	ErrEmptyCategory    = errors.New("please select a category")
	ErrEmptyDescription = errors.New("please enter a description")
	ErrEmptyDate        = errors.New("please select a date")
	ErrEmptyName        = errors.New("please enter a category name")
	ErrInvalidColor     = errors.New("color must be a hex value like #64748B")
	ErrUnknownIcon      = errors.New("unknown icon")
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Icons lists the supported icon names in display order.
func Icons() []Icon {
	return []Icon{
		IconWallet, IconShoppingCart, IconHome, IconCar, IconCoffee,
		IconGift, IconFilm, IconBookOpen, IconUtensils, IconPlane,
	}
}

// IsValid reports whether the icon belongs to the supported set.
func (i Icon) IsValid() bool {
	for _, known := range Icons() {
		if i == known {
			return true
		}
	}
	return false
}

// Glyph returns the character rendered for the icon. Unknown names get the
// "plus" fallback.
func (i Icon) Glyph() string {
	switch i {
	case IconWallet:
		return "👛"
	case IconShoppingCart:
		return "🛒"
	case IconHome:
		return "🏠"
	case IconCar:
		return "🚗"
	case IconCoffee:
		return "☕"
	case IconGift:
		return "🎁"
	case IconFilm:
		return "🎬"
	case IconBookOpen:
		return "📖"
	case IconUtensils:
		return "🍴"
	case IconPlane:
		return "✈️"
	default:
		return "➕"
	}
}

// IsHexColor reports whether s is a "#RRGGBB" color.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the fields the expense form requires, in the order the
// form reports them.
func (e ExpenseDraft) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.Date.IsZero() {
		return ErrEmptyDate
	}
	return nil
}

// Draft returns the expense without its id.
func (e Expense) Draft() ExpenseDraft {
	return ExpenseDraft{
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
}

// WithID builds the stored expense for the given id.
func (e ExpenseDraft) WithID(id string) Expense {
	return Expense{
		ID:          id,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
}

func (c CategoryDraft) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Color != "" && !IsHexColor(c.Color) {
		return ErrInvalidColor
	}
	if c.Icon != "" && !c.Icon.IsValid() {
		return ErrUnknownIcon
	}
	return nil
}

// WithID builds the stored category for the given id.
func (c CategoryDraft) WithID(id string) Category {
	return Category{
		ID:    id,
		Name:  c.Name,
		Color: c.Color,
		Icon:  c.Icon,
	}
}
