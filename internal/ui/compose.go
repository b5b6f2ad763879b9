package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cinevibe/cinevibe/internal/apperr"
	"github.com/cinevibe/cinevibe/internal/social"
)

type submitFunc func(ctx context.Context, rating int, content string) (string, error)

// composer is the form for writing or editing a review or comment. Input is
// checked here first so an invalid form never starts an operation.
type composer struct {
	title     string
	withScore bool
	rating    textinput.Model
	content   textinput.Model
	focus     int // 0 = content, 1 = rating
	err       string
	validate  func(string) (string, error)
	submit    submitFunc
	owner     screen // nil for forms not tied to a list
}

func newContentInput(initial string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Say something about it"
	ti.CharLimit = social.MaxContentLength
	ti.SetValue(initial)
	ti.Focus()
	return ti
}

func newReviewComposer(title string, rating int, content string, submit submitFunc) *composer {
	r := textinput.New()
	r.Placeholder = fmt.Sprintf("%d-%d", social.MinRating, social.MaxRating)
	r.CharLimit = 2
	r.Width = 4
	if rating > 0 {
		r.SetValue(strconv.Itoa(rating))
	}
	return &composer{
		title:     title,
		withScore: true,
		rating:    r,
		content:   newContentInput(content),
		validate:  social.ValidateContent,
		submit:    submit,
	}
}

func newCommentComposer(title, content string, submit submitFunc) *composer {
	return &composer{
		title:    title,
		content:  newContentInput(content),
		validate: social.ValidateContent,
		submit:   submit,
	}
}

// maxBioLength bounds the profile bio.
const maxBioLength = 160

func newBioComposer(bio string, submit submitFunc) *composer {
	in := newContentInput(bio)
	in.Placeholder = "A line about yourself"
	in.CharLimit = maxBioLength
	return &composer{
		title:   "Edit bio",
		content: in,
		validate: func(s string) (string, error) {
			s = strings.TrimSpace(s)
			if len([]rune(s)) > maxBioLength {
				return "", apperr.Validation(fmt.Sprintf("bio must be at most %d characters", maxBioLength))
			}
			return s, nil
		},
		submit: submit,
	}
}

func (c *composer) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (c *composer) toggleFocus() {
	if !c.withScore {
		return
	}
	c.focus = 1 - c.focus
	if c.focus == 1 {
		c.content.Blur()
		c.rating.Focus()
	} else {
		c.rating.Blur()
		c.content.Focus()
	}
}

// values validates the form and returns what to submit.
func (c *composer) values() (int, string, error) {
	body, err := c.validate(c.content.Value())
	if err != nil {
		return 0, "", err
	}
	if !c.withScore {
		return 0, body, nil
	}
	raw := strings.TrimSpace(c.rating.Value())
	rating, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, "", apperr.Validation(fmt.Sprintf("rating must be a number from %d to %d", social.MinRating, social.MaxRating))
	}
	if err := social.ValidateRating(rating); err != nil {
		return 0, "", err
	}
	return rating, body, nil
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.compose
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.compose = nil
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		c.toggleFocus()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		rating, body, err := c.values()
		if err != nil {
			c.err = apperr.UserMessage(err)
			return m, nil
		}
		m.compose = nil
		submit := c.submit
		return m, opCmd(m.screenCtx(c.owner), func(ctx context.Context) (string, error) {
			return submit(ctx, rating, body)
		})
	}

	c.err = ""
	var cmd tea.Cmd
	if c.focus == 1 {
		c.rating, cmd = c.rating.Update(msg)
	} else {
		c.content, cmd = c.content.Update(msg)
	}
	return m, cmd
}

func (m Model) renderCompose() string {
	c := m.compose
	styles := m.theme.Styles()
	width := m.width - 10
	if width > 90 {
		width = 90
	}
	if width < 30 {
		width = 30
	}
	c.content.Width = width - 8

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(c.title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", width-6)))
	b.WriteString("\n\n")

	if c.withScore {
		b.WriteString(styles.MutedText.Render("Rating  "))
		b.WriteString(c.rating.View())
		b.WriteString("\n\n")
	}
	b.WriteString(styles.MutedText.Render("Text"))
	b.WriteString("\n")
	b.WriteString(c.content.View())
	b.WriteString("\n")
	count := len([]rune(c.content.Value()))
	counter := fmt.Sprintf("%d/%d", count, c.content.CharLimit)
	if count >= c.content.CharLimit {
		b.WriteString(styles.WarningText.Render(counter))
	} else {
		b.WriteString(styles.FaintText.Render(counter))
	}
	b.WriteString("\n\n")

	if c.err != "" {
		b.WriteString(styles.DangerText.Render(c.err))
		b.WriteString("\n")
	}
	hints := "enter submit · esc cancel"
	if c.withScore {
		hints = "tab switch field · " + hints
	}
	b.WriteString(styles.MutedText.Render(hints))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(width)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
