package views

import (
	"sync"

	"oitivas-pro/pkg/models"
)

// Geometria do popover em pixels CSS.
const (
	PopoverWidth  = 320
	PopoverHeight = 200
	popoverOffset = 10
)

// Point é uma posição em coordenadas da janela.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Viewport é o tamanho da janela do navegador.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Place posiciona o popover junto ao clique: abaixo e à direita por
// padrão, do outro lado quando estouraria, e por fim limitado para nunca
// sair da janela.
func Place(click Point, vp Viewport) Point {
	left := click.X + popoverOffset
	top := click.Y + popoverOffset

	if left+PopoverWidth > vp.Width {
		left = click.X - PopoverWidth - popoverOffset
	}
	if top+PopoverHeight > vp.Height {
		top = click.Y - PopoverHeight - popoverOffset
	}

	return Point{X: clamp(left, 0, vp.Width-PopoverWidth), Y: clamp(top, 0, vp.Height-PopoverHeight)}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PopoverRow é uma oitiva listada no popover do dia.
type PopoverRow struct {
	ID   string `json:"id"`
	Time string `json:"time"`
	Name string `json:"name"`
	Type string `json:"type"`
	Done bool   `json:"done"`
}

// DayContent é o corpo do popover de uma data.
type DayContent struct {
	Date  string       `json:"date"`
	Title string       `json:"title"`
	Rows  []PopoverRow `json:"rows"`
	Empty bool         `json:"empty"`
}

// DayPopover lista os itens de date ordenados por hora.
func DayPopover(items []models.Appointment, date string) DayContent {
	var day []models.Appointment
	for _, a := range items {
		if a.Date == date {
			day = append(day, a)
		}
	}
	models.SortChronologically(day)

	content := DayContent{Date: date, Rows: make([]PopoverRow, 0, len(day))}
	if d, ok := ParseDate(date); ok {
		content.Title = LongDate(d)
	}
	for _, a := range day {
		content.Rows = append(content.Rows, PopoverRow{
			ID:   a.ID,
			Time: orDefault(a.Time, NoTime),
			Name: orDefault(a.Name, NoName),
			Type: orDefault(a.Type, NoType),
			Done: a.IsDone(),
		})
	}
	content.Empty = len(content.Rows) == 0
	return content
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// PopoverState é Closed ou Open.
type PopoverState string

const (
	PopoverClosed PopoverState = "closed"
	PopoverOpen   PopoverState = "open"
)

// PopoverView é o que o navegador mostra para o popover.
type PopoverView struct {
	State    PopoverState `json:"state"`
	Position Point        `json:"position"`
	Content  *DayContent  `json:"content,omitempty"`
}

// Popover é a máquina de estados do popover do dia. Closed -> Open com
// clique num dia; Open -> Closed com clique fora, fechamento explícito,
// seleção de item ou inclusão na data. Clicar num dia com o popover
// aberto mostra a nova data.
type Popover struct {
	mu       sync.Mutex
	state    PopoverState
	date     string
	position Point
}

func NewPopover() *Popover {
	return &Popover{state: PopoverClosed}
}

// Open mostra o popover de date. Retorna false para data inválida.
func (p *Popover) Open(items []models.Appointment, date string, click Point, vp Viewport) (PopoverView, bool) {
	if _, ok := ParseDate(date); !ok {
		return p.View(items), false
	}

	p.mu.Lock()
	p.state = PopoverOpen
	p.date = date
	p.position = Place(click, vp)
	p.mu.Unlock()

	return p.View(items), true
}

// ClickOutside fecha o popover, a não ser que o clique tenha caído numa
// célula de dia, que é tratada por Open.
func (p *Popover) ClickOutside(onDayCell bool) {
	if onDayCell {
		return
	}
	p.Close()
}

// Close fecha o popover.
func (p *Popover) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PopoverClosed
	p.date = ""
}

// Select fecha o popover e retorna o id a abrir no editor. Retorna false
// com o popover fechado.
func (p *Popover) Select(id string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PopoverOpen {
		return "", false
	}
	p.state = PopoverClosed
	p.date = ""
	return id, true
}

// AddOnDate fecha o popover e retorna a data dele para um formulário novo.
func (p *Popover) AddOnDate() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PopoverOpen {
		return "", false
	}
	date := p.date
	p.state = PopoverClosed
	p.date = ""
	return date, true
}

// View monta o popover com o dataset atual.
func (p *Popover) View(items []models.Appointment) PopoverView {
	p.mu.Lock()
	state, date, pos := p.state, p.date, p.position
	p.mu.Unlock()

	if state != PopoverOpen {
		return PopoverView{State: PopoverClosed}
	}
	content := DayPopover(items, date)
	return PopoverView{State: PopoverOpen, Position: pos, Content: &content}
}

// State retorna o estado atual.
func (p *Popover) State() PopoverState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
