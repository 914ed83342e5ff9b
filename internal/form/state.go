package form

// Status состояние формы.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

const (
	// CopyLabel базовая подпись кнопки копирования.
	CopyLabel = "Copy"
	// CopiedLabel подпись после успешного копирования.
	CopiedLabel = "Copied!"

	loadingMessage = "Generating MCP server..."
	successMessage = "MCP server is ready."
)

// State всё, что отображает форма. Принадлежит одному Controller.
type State struct {
	Input          string
	Status         Status
	Message        string
	ResultURL      string
	SubmitDisabled bool
	InputBusy      bool
	CopyLabel      string
	Copied         bool
}

// ResultVisible блок результата показывается только при наличии адреса.
func (s State) ResultVisible() bool {
	return s.ResultURL != ""
}

// InitialState состояние новой формы.
func InitialState() State {
	return State{Status: StatusIdle, CopyLabel: CopyLabel}
}
