package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPurple      = lipgloss.Color("#7D56F4")
	ColorGreen       = lipgloss.Color("#25A065")
	ColorBlue        = lipgloss.Color("#4285F4")
	ColorRed         = lipgloss.Color("#E05252")
	ColorYellow      = lipgloss.Color("#E5C07B")
	ColorGray        = lipgloss.Color("#626262")
	ColorGrayDim     = lipgloss.Color("#404040")
	ColorWhite       = lipgloss.Color("#FFFFFF")
	ColorOffWhite    = lipgloss.Color("#D0D0D0")
	ColorSelectionBg = lipgloss.Color("#2D3B4D")
	ColorCyan        = lipgloss.Color("#56B6C2")
	ColorOrange      = lipgloss.Color("#D19A66")
	ColorCutBg       = lipgloss.Color("#3E2F1F")
)

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	HeaderPathStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DirtyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorYellow)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)
)

// Mode badges
var (
	EditBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorPurple).
			Padding(0, 1)

	ViewBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorGreen).
			Padding(0, 1)
)

// Tree item styles
var (
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorSelectionBg)

	DirStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	FileStyle = lipgloss.NewStyle().
			Foreground(ColorOffWhite)

	OtherFileStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	OpenFileStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	CutStyle = lipgloss.NewStyle().
			Foreground(ColorOrange).
			Background(ColorCutBg)

	DepthIndent = "  "
)

// Preview link styles
var (
	LinkStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Underline(true)

	ActiveLinkStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorPurple)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPurple).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	ModalKeyStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)
)

// Input styles
var (
	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorPurple).
				Bold(true)
)

// Search styles
var (
	ColorSearchCharBg = lipgloss.Color("#2E2545")

	SearchBarStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	SearchCharStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple).
			Background(ColorSearchCharBg)

	SearchCountStyle = lipgloss.NewStyle().
				Foreground(ColorGray)
)

// Tree icons
const (
	IconExpanded  = "▼"
	IconCollapsed = "▶"
	IconEmptyDir  = "▷"
	IconFile      = "•"
	IconCut       = "✂"
)
