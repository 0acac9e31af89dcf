package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/core/ports/driven"
)

// Ensure Console implements the interface.
var _ driven.Notifier = (*Console)(nil)

// Console writes one styled line per notification.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	styles *Styles
}

// NewConsole creates a notifier writing to out. A nil out means stderr.
func NewConsole(out io.Writer, styles *Styles) *Console {
	if out == nil {
		out = os.Stderr
	}
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Console{out: out, styles: styles}
}

// Notify prints n. Write errors are ignored; a notification is best effort.
func (c *Console) Notify(n domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	label := c.styles.ForKind(n.Kind).Render(fmt.Sprintf("[%s]", n.Kind))
	_, _ = fmt.Fprintf(c.out, "%s %s\n", label, n.Message)
}
