package battle

import "github.com/cory-johannsen/redarchon/internal/game/character"

// MenuKind is the menu shown during PlayerTurn.
type MenuKind int

const (
	MenuMain MenuKind = iota
	MenuItems
	MenuSpecial
)

func (k MenuKind) String() string {
	switch k {
	case MenuItems:
		return "items"
	case MenuSpecial:
		return "special"
	default:
		return "main"
	}
}

var (
	mainOptions = []string{"Attack", "Items", "Special"}
	itemOptions = []string{"Use HP", "Use MP", "Exit"}
)

type menu struct {
	kind   MenuKind
	cursor int
}

func (m *menu) move(d Direction, n int) {
	if n == 0 {
		return
	}
	switch d {
	case Left, Up:
		m.cursor = (m.cursor - 1 + n) % n
	case Right, Down:
		m.cursor = (m.cursor + 1) % n
	}
}

// MenuView is the menu state exposed to the presentation layer.
type MenuView struct {
	Kind    MenuKind
	Options []string
	Cursor  int
	// Visible is false outside PlayerTurn.
	Visible bool
}

// Menu returns the current menu.
func (s *Session) Menu() MenuView {
	return MenuView{
		Kind:    s.menu.kind,
		Options: s.menuOptions(),
		Cursor:  s.menu.cursor,
		Visible: s.state == PlayerTurn && !s.ended,
	}
}

func (s *Session) menuOptions() []string {
	switch s.menu.kind {
	case MenuItems:
		return itemOptions
	case MenuSpecial:
		defs := s.specials.All()
		out := make([]string, 0, len(defs)+1)
		for _, d := range defs {
			out = append(out, d.Name)
		}
		return append(out, "Exit")
	default:
		return mainOptions
	}
}

func (s *Session) openMenu(kind MenuKind) {
	s.menu = menu{kind: kind}
}

func (s *Session) confirm() {
	switch s.menu.kind {
	case MenuMain:
		switch s.menu.cursor {
		case 0:
			s.Attack()
		case 1:
			s.openMenu(MenuItems)
		case 2:
			s.openMenu(MenuSpecial)
		}
	case MenuItems:
		switch s.menu.cursor {
		case 0:
			s.UseItem(character.HPPotion)
		case 1:
			s.UseItem(character.MPPotion)
		default:
			s.openMenu(MenuMain)
		}
	case MenuSpecial:
		defs := s.specials.All()
		if s.menu.cursor < len(defs) {
			s.UseSpecial(defs[s.menu.cursor].ID)
			return
		}
		s.openMenu(MenuMain)
	}
}
