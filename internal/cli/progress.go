package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/upload"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Warning:    lipgloss.Color("#FFAF00"), // amber
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg advances the simulated ramp.
type tickMsg time.Time

// uploadDoneMsg carries the outcome of the upload request.
type uploadDoneMsg struct {
	result *models.UploadResult
	err    error
}

// uploadFunc performs the actual upload.
type uploadFunc func(ctx context.Context) (*models.UploadResult, error)

// progressModel is the bubbletea model for an upload in flight.
type progressModel struct {
	ctx      context.Context
	work     uploadFunc
	files    int
	ramp     *upload.Ramp
	progress progress.Model
	theme    Theme
	result   *models.UploadResult
	done     bool
	quitting bool
	err      error
}

// newProgressModel creates a new progress model.
func newProgressModel(ctx context.Context, files int, ramp *upload.Ramp, work uploadFunc) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		ctx:      ctx,
		work:     work,
		files:    files,
		ramp:     ramp,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init starts the upload and the ramp.
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.runUpload(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.done = true
			return m, tea.Quit
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.ramp.Step()
		return m, tickCmd()

	case uploadDoneMsg:
		m.done = true
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.ramp.Complete()
		m.result = msg.result
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	pct := m.ramp.Percent()
	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", upload.Stage(pct)))
	bar := m.progress.ViewAs(pct / 100)
	counts := fmt.Sprintf("%3.0f%% of %d files", pct, m.files)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, counts, hint)
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nUpload cancelled.\n")
	}
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Upload failed: %s\n", m.err))
	}

	out := m.theme.completedStyle().Render("✓ "+upload.Stage(100)) + "\n\n"
	if r := m.result; r != nil {
		out += fmt.Sprintf("  Files processed: %d\n", r.FilesProcessed)
		out += fmt.Sprintf("  Chunks added:    %d\n", r.ChunksAdded)
		if len(r.FailedFiles) > 0 {
			out += m.theme.errorStyle().Render(fmt.Sprintf("\nSkipped (%d):\n", len(r.FailedFiles)))
			for _, f := range r.FailedFiles {
				out += fmt.Sprintf("  • %s\n", f)
			}
		}
	}
	return out
}

// runUpload performs the upload in a separate goroutine (command) so Update never blocks.
func (m progressModel) runUpload() tea.Cmd {
	return func() tea.Msg {
		result, err := m.work(m.ctx)
		return uploadDoneMsg{result: result, err: err}
	}
}

// tickCmd returns a command that sends a tick after the ramp interval.
func tickCmd() tea.Cmd {
	return tea.Tick(upload.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RunUploadProgress runs the interactive progress UI around work.
// Ctrl+C cancels the request.
func RunUploadProgress(files int, work uploadFunc) (*models.UploadResult, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := newProgressModel(ctx, files, upload.NewRamp(), work)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(progressModel)
	if !ok {
		return nil, nil
	}
	if m.quitting {
		return nil, context.Canceled
	}
	return m.result, m.err
}
