package host

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"guildcore/internal/session"
	"guildcore/pkg/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	cellStyle  = lipgloss.NewStyle().Width(3).Align(lipgloss.Center)
	emptyStyle = cellStyle.Foreground(lipgloss.Color("240"))
	frameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	noteStyle  = lipgloss.NewStyle().Faint(true)
)

// Console is a Memory host that also draws every presented surface to w.
type Console struct {
	*Memory

	wmu   sync.Mutex
	w     io.Writer
	names map[types.UserID]string
}

var _ session.Host = (*Console)(nil)

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, opts ...Option) *Console {
	return &Console{Memory: NewMemory(opts...), w: w, names: make(map[types.UserID]string)}
}

// SetName sets the display name used for user in output.
func (c *Console) SetName(user types.UserID, name string) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.names[user] = name
}

func (c *Console) PresentSurface(ctx context.Context, user types.UserID, s *session.Surface) {
	c.Memory.PresentSurface(ctx, user, s)
	c.printf("%s sees:\n%s\n", c.name(user), RenderSurface(s))
}

func (c *Console) DismissSurface(ctx context.Context, user types.UserID) {
	c.Memory.DismissSurface(ctx, user)
	c.printf("%s\n", noteStyle.Render(c.name(user)+"'s panel was closed"))
}

// Say prints a line addressed to user, as chat feedback would be.
func (c *Console) Say(user types.UserID, msg string) {
	c.printf("[to %s] %s\n", c.name(user), msg)
}

func (c *Console) name(user types.UserID) string {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if n, ok := c.names[user]; ok {
		return n
	}
	return user.String()[:8]
}

func (c *Console) printf(format string, args ...any) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

// RenderSurface draws s as a framed grid followed by a legend of the
// occupied slots.
func RenderSurface(s *session.Surface) string {
	rows := make([]string, 0, s.Rows()+1)
	rows = append(rows, titleStyle.Render(s.Title()))
	var legend []string
	for r := 0; r < s.Rows(); r++ {
		cells := make([]string, 0, session.RowWidth)
		for col := 0; col < session.RowWidth; col++ {
			slot := r*session.RowWidth + col
			it := s.Item(slot)
			if it == nil {
				cells = append(cells, emptyStyle.Render("·"))
				continue
			}
			cells = append(cells, cellStyle.Render(glyph(it)))
			legend = append(legend, fmt.Sprintf("%2d %s", slot, describe(it)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	out := frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if len(legend) > 0 {
		out += "\n" + noteStyle.Render(strings.Join(legend, "\n"))
	}
	return out
}

func glyph(it *types.Item) string {
	label := it.Name
	if label == "" {
		label = it.Material
	}
	r, _ := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

func describe(it *types.Item) string {
	var b strings.Builder
	if it.Name != "" {
		b.WriteString(it.Name)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "(%s", it.Material)
	if it.Amount > 1 {
		fmt.Fprintf(&b, " x%d", it.Amount)
	}
	b.WriteString(")")
	return b.String()
}
