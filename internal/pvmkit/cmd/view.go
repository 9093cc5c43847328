package cmd

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"pvmkit/internal/disasm"
	"pvmkit/internal/listing"
	"pvmkit/internal/pvmkit/styles"
	"pvmkit/internal/ui/colorize"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Browse a program interactively",
	Long: `Open an interactive viewer with the program listing, a filterable
instruction list and a summary of the file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		absPath, err := pathpkg.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %v", err)
		}
		if _, err := os.Stat(absPath); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", args[0])
			}
			return fmt.Errorf("cannot access file: %v", err)
		}
		hexText, _ := cmd.Flags().GetBool("hex")

		program := tea.NewProgram(
			NewViewModel(absPath, hexText, configFrom(cmd).Style),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func init() {
	viewCmd.Flags().BoolP("hex", "x", false, "Input file contains hex text")
}

type viewMode int

const (
	viewListing viewMode = iota
	viewInstructions
	viewDetails
)

type instItem struct {
	index int
	inst  disasm.Inst
	line  string // plain listing line
}

func (i instItem) FilterValue() string { return i.line }

type instDelegate struct {
	style string
}

func (d instDelegate) Height() int                               { return 1 }
func (d instDelegate) Spacing() int                              { return 0 }
func (d instDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d instDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(instItem)
	if !ok {
		return
	}

	indicator := " "
	offsetStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		offsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}

	body := strings.TrimSpace(i.line[min(len(i.line), 6):])
	if colored, err := colorize.Colorize(body, d.style); err == nil {
		body = colored
	}
	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		offsetStyle.Render(fmt.Sprintf("%04x", i.inst.Offset)),
		body)
}

type programLoadedMsg struct {
	prog *disasm.Program
	err  error
}

type digestCalculatedMsg struct {
	digest string
}

func loadProgramCmd(path string, hexText bool) tea.Cmd {
	return func() tea.Msg {
		code, err := readInput(path, hexText)
		if err != nil {
			return programLoadedMsg{err: err}
		}
		prog, err := disasm.Disassemble(code)
		return programLoadedMsg{prog: prog, err: err}
	}
}

func calculateDigestCmd(path string) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return digestCalculatedMsg{digest: fmt.Sprintf("error: %v", err)}
		}
		defer file.Close()

		hash := sha256.New()
		if _, err := io.Copy(hash, file); err != nil {
			return digestCalculatedMsg{digest: fmt.Sprintf("error: %v", err)}
		}
		return digestCalculatedMsg{digest: fmt.Sprintf("%x", hash.Sum(nil))}
	}
}

type viewModel struct {
	listingView   viewport.Model
	instList      list.Model
	detailsView   viewport.Model
	spinner       spinner.Model
	mode          viewMode
	path          string
	hexText       bool
	style         string
	digest        string
	prog          *disasm.Program
	err           error
	loading       bool
	loadingDigest bool
	width         int
	height        int
}

func NewViewModel(path string, hexText bool, style string) viewModel {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	instList := list.New([]list.Item{}, instDelegate{style: style}, 80, 24)
	instList.SetShowStatusBar(false)
	instList.SetFilteringEnabled(true)
	instList.Title = "Instructions"
	instList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	instList.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	dvp := viewport.New()
	dvp.SetWidth(80)
	dvp.SetHeight(24)

	m := viewModel{
		listingView:   vp,
		instList:      instList,
		detailsView:   dvp,
		spinner:       s,
		mode:          viewListing,
		path:          path,
		hexText:       hexText,
		style:         style,
		loading:       true,
		loadingDigest: true,
		width:         80,
		height:        24,
	}
	m.updateContent()
	return m
}

func (m viewModel) Init() tea.Cmd {
	return tea.Batch(
		loadProgramCmd(m.path, m.hexText),
		calculateDigestCmd(m.path),
		m.spinner.Tick,
	)
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case programLoadedMsg:
		m.loading = false
		m.prog, m.err = msg.prog, msg.err
		if m.err != nil {
			m.mode = viewDetails
		}
		cmd = m.updateInstructions()
		m.updateContent()
		return m, cmd

	case digestCalculatedMsg:
		m.digest = msg.digest
		m.loadingDigest = false
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading || m.loadingDigest {
			m.updateContent()
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.listingView.SetWidth(msg.Width)
			m.listingView.SetHeight(msg.Height - 2)
			m.instList.SetWidth(msg.Width)
			m.instList.SetHeight(msg.Height - 2)
			m.detailsView.SetWidth(msg.Width)
			m.detailsView.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		// Let the list own the keyboard while its filter is open
		filtering := m.mode == viewInstructions && m.instList.FilterState() == list.Filtering
		switch key := msg.String(); {
		case key == "ctrl+c" || (key == "q" && !filtering):
			return m, tea.Quit
		case filtering:
		case key == "l":
			m.mode = viewListing
			return m, nil
		case key == "i":
			if m.prog != nil {
				m.mode = viewInstructions
			}
			return m, nil
		case key == "d":
			m.mode = viewDetails
			return m, nil
		case key == "enter" && m.mode == viewInstructions:
			if item, ok := m.instList.SelectedItem().(instItem); ok {
				m.mode = viewListing
				m.listingView.SetYOffset(item.index)
			}
			return m, nil
		case key == "tab":
			m.mode = m.nextMode(1)
			return m, nil
		case key == "shift+tab":
			m.mode = m.nextMode(-1)
			return m, nil
		}
	}

	switch m.mode {
	case viewInstructions:
		m.instList, cmd = m.instList.Update(msg)
	case viewDetails:
		m.detailsView, cmd = m.detailsView.Update(msg)
	default:
		m.listingView, cmd = m.listingView.Update(msg)
	}
	return m, cmd
}

// nextMode cycles through the views, skipping the instruction list when
// nothing was decoded.
func (m viewModel) nextMode(step int) viewMode {
	mode := m.mode
	for range 3 {
		mode = (mode + viewMode(3+step)) % 3
		if mode != viewInstructions || m.prog != nil {
			return mode
		}
	}
	return m.mode
}

func (m viewModel) View() string {
	var content string
	var menu string
	switch m.mode {
	case viewInstructions:
		content = m.instList.View()
		menu = " Enter: jump to listing • L: listing • D: details • Tab: cycle • Q: quit "
	case viewDetails:
		content = m.detailsView.View()
		menu = " L: listing • I: instructions • Tab: cycle • Q: quit "
	default:
		content = m.listingView.View()
		menu = " I: instructions • D: details • Tab: cycle • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

// updateInstructions fills the instruction list and the listing view.
// Listing line i is instruction i.
func (m *viewModel) updateInstructions() tea.Cmd {
	if m.prog == nil {
		return nil
	}
	text := listing.Format(m.prog, listing.Options{Offsets: true, Raw: true})
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	items := make([]list.Item, 0, len(m.prog.Insts))
	for i, in := range m.prog.Insts {
		items = append(items, instItem{
			index: i,
			inst:  in,
			line:  listing.FormatInst(in, listing.Options{Offsets: true}, nil),
		})
	}
	m.instList.Title = fmt.Sprintf("Instructions (%d total)", len(items))

	if len(m.prog.Insts) == 0 {
		m.listingView.SetContent("; empty program")
	} else {
		m.listingView.SetContent(colorize.ColorizeListing(strings.Join(lines, "\n"), m.style))
	}
	m.listingView.GotoTop()
	return m.instList.SetItems(items)
}

// updateContent renders the details view and the loading state.
func (m *viewModel) updateContent() {
	relPath := m.path
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := pathpkg.Rel(cwd, m.path); err == nil {
			relPath = rel
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("; %s", relPath))
	if m.digest != "" {
		lines = append(lines, fmt.Sprintf("; sha256 %s", m.digest))
	}
	if m.prog != nil {
		lines = append(lines, fmt.Sprintf("; %d bytes, %d instructions", m.prog.Len(), len(m.prog.Insts)))
	}

	markdown := fmt.Sprintf("# pvmkit\n\n```\n%s\n```", strings.Join(lines, "\n"))

	if m.err != nil {
		markdown += fmt.Sprintf("\n\n## Error\n\n`%s`", escapeBackticks(m.err.Error()))
	}
	if m.prog != nil {
		if warnings := m.prog.Warnings(); len(warnings) > 0 {
			markdown += "\n\n## Warnings\n"
			for _, w := range warnings {
				markdown += fmt.Sprintf("\n> %s\n", escapeBackticks(w))
			}
		}
	}
	if m.loading {
		markdown += fmt.Sprintf("\n\n%s Disassembling...", m.spinner.View())
		m.listingView.SetContent(fmt.Sprintf("%s Disassembling...", m.spinner.View()))
	}
	if m.loadingDigest {
		markdown += fmt.Sprintf("\n\n%s Calculating digest...", m.spinner.View())
	}

	width := m.width
	if width == 0 {
		width = 80
	}
	renderer, err := styles.GetVSCodeDarkRenderer(width - 2)
	if err != nil {
		m.detailsView.SetContent(markdown)
		return
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		rendered = markdown
	}
	m.detailsView.SetContent(strings.TrimSuffix(rendered, "\n"))
}

func escapeBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
