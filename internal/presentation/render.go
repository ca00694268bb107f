package presentation

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/character"
)

const (
	newline   = "\n"
	barWidth  = 20
	dialSlots = 36
	trackLen  = 53
)

// Render formats a View as colored terminal text.
func Render(v View) string {
	var b strings.Builder

	title := v.EnemyName
	if v.Boss {
		title += " (boss)"
	}
	b.WriteString(Colorf(BrightYellow, "%s vs %s", v.PlayerName, title))
	b.WriteString(Colorf(Dim, "  [%s %.1fs]", v.State, v.Elapsed.Seconds()))
	b.WriteString(newline)

	b.WriteString(RenderGauge(v.EnemyName, v.EnemyHP, BrightRed))
	b.WriteString(Colorf(Dim, "  %s#%d", v.Clip, v.Frame))
	b.WriteString(newline)
	b.WriteString(RenderGauge("HP", v.PlayerHP, BrightGreen))
	b.WriteString(newline)
	b.WriteString(RenderGauge("MP", v.PlayerMP, BrightBlue))
	b.WriteString(newline)

	if buffs := RenderBuffs(v); buffs != "" {
		b.WriteString(buffs)
		b.WriteString(newline)
	}

	switch {
	case v.Ended:
		b.WriteString(RenderOutcome(v.Outcome))
		b.WriteString(newline)
	case v.HasDodge:
		b.WriteString(RenderDodge(v.Dodge))
		b.WriteString(newline)
	case v.HasAttack:
		b.WriteString(RenderAttack(v.Attack))
		b.WriteString(newline)
	case v.Menu.Visible:
		b.WriteString(RenderMenu(v.Menu))
		b.WriteString(newline)
	}

	if v.Popup != "" && v.PopupRemaining > 0 {
		b.WriteString(Colorize(BrightWhite, v.Popup))
		b.WriteString(newline)
	}
	return b.String()
}

// RenderGauge draws a labelled bar filled to the gauge's display value.
func RenderGauge(label string, g Gauge, color string) string {
	filled := int(math.Round(g.Fraction() * barWidth))
	return fmt.Sprintf("%-12s [%s%s] %3d/%-3d",
		label,
		Colorize(color, strings.Repeat("#", filled)),
		strings.Repeat(".", barWidth-filled),
		g.Current, g.Max)
}

// RenderBuffs lists the active buff counters and held potions.
//
// Postcondition: Returns "" when no buff is active and no potion is held.
func RenderBuffs(v View) string {
	var parts []string
	if v.Buffs.Overclock > 0 {
		parts = append(parts, Colorf(Magenta, "Overclock x%d", v.Buffs.Overclock))
	}
	if v.Buffs.Guard > 0 {
		parts = append(parts, Colorf(Cyan, "Guard x%d", v.Buffs.Guard))
	}
	if v.Buffs.Repair > 0 {
		parts = append(parts, Colorf(Green, "Repair x%d", v.Buffs.Repair))
	}
	for _, it := range character.Items {
		if n := v.Potions[it.ID]; n > 0 {
			parts = append(parts, Colorf(White, "%s x%d", it.Name, n))
		}
	}
	return strings.Join(parts, "  ")
}

// RenderMenu draws the menu options with the cursor highlighted.
func RenderMenu(m battle.MenuView) string {
	parts := make([]string, len(m.Options))
	for i, opt := range m.Options {
		if i == m.Cursor {
			parts[i] = Colorf(BrightYellow, "> %s <", opt)
		} else {
			parts[i] = Colorf(White, "  %s  ", opt)
		}
	}
	return strings.Join(parts, " ")
}

// RenderAttack draws the rotating pointer as a ring flattened into a row of
// ten-degree slots: '=' marks the hit zone and '^' the pointer.
func RenderAttack(a battle.AttackView) string {
	var ring strings.Builder
	pointer := int(a.Angle/(360.0/dialSlots)) % dialSlots
	for i := 0; i < dialSlots; i++ {
		center := (float64(i) + 0.5) * 360.0 / dialSlots
		switch {
		case i == pointer:
			ring.WriteString(Colorize(BrightYellow, "^"))
		case a.Zone.Contains(center):
			ring.WriteString(Colorize(BrightGreen, "="))
		default:
			ring.WriteString(Colorize(Dim, "-"))
		}
	}
	status := "press!"
	if !a.Active {
		status = "resolving"
	}
	return fmt.Sprintf("[%s] hits %d  %s", ring.String(), a.Hits, status)
}

// RenderDodge draws the dodge bar: '#' perfect, '=' good, '-' glance, '.'
// full damage, with '|' at the pointer, followed by the required direction.
func RenderDodge(d battle.DodgeView) string {
	var track strings.Builder
	half := d.BarWidth / 2
	pointer := -1
	if d.Moving && d.BarWidth > 0 {
		pointer = int(math.Round((d.Pointer + half) / d.BarWidth * (trackLen - 1)))
	}
	for i := 0; i < trackLen; i++ {
		pos := float64(i)/(trackLen-1)*d.BarWidth - half
		if i == pointer {
			track.WriteString(Colorize(BrightWhite, "|"))
			continue
		}
		switch dist := math.Abs(pos); {
		case dist <= d.Zones.Inner:
			track.WriteString(Colorize(BrightGreen, "#"))
		case dist <= d.Zones.Middle:
			track.WriteString(Colorize(Green, "="))
		case dist <= d.Zones.Outer:
			track.WriteString(Colorize(Yellow, "-"))
		default:
			track.WriteString(Colorize(Red, "."))
		}
	}
	return fmt.Sprintf("[%s] round %d/%d  press %s  taken %d",
		track.String(), d.Round, d.Rounds,
		Colorize(Bold, strings.ToUpper(d.Direction.String())), d.Accumulated)
}

// RenderOutcome draws the end-of-battle banner.
func RenderOutcome(o battle.Outcome) string {
	switch o {
	case battle.OutcomeVictory:
		return Colorize(Bold+BrightGreen, "*** VICTORY ***")
	case battle.OutcomeDefeat:
		return Colorize(Bold+BrightRed, "*** DEFEAT ***")
	default:
		return ""
	}
}
