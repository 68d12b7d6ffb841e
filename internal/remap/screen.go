package remap

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/oddtangent/keyjoyd/internal/mapping"
)

var (
	colBlack     = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colBG        = color.RGBA{0x10, 0x18, 0x28, 0xff}
	colBody      = color.RGBA{0x4a, 0x4a, 0x6a, 0xff}
	colBodyDark  = color.RGBA{0x36, 0x36, 0x4e, 0xff}
	colStickBase = color.RGBA{0x5a, 0x5a, 0x7a, 0xff}
	colStick     = color.RGBA{0x6e, 0x6e, 0x90, 0xff}
	colStickTop  = color.RGBA{0x88, 0x88, 0xaa, 0xff}
	colBtn       = color.RGBA{0x50, 0x50, 0x78, 0xff}
	colBtnFire   = color.RGBA{0x6e, 0x44, 0x44, 0xff}
	colHighlight = color.RGBA{0xff, 0xcc, 0x00, 0xff}
	colMapped    = color.RGBA{0x22, 0xbb, 0x66, 0xff}
	colText      = color.RGBA{0xd0, 0xd0, 0xe0, 0xff}
	colTextDim   = color.RGBA{0x70, 0x70, 0x88, 0xff}
	colTitle     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colSelected  = color.RGBA{0x2a, 0x44, 0x88, 0xff}
	colBorder    = color.RGBA{0x55, 0x66, 0xaa, 0xff}
	colError     = color.RGBA{0xff, 0x44, 0x44, 0xff}
	colSuccess   = color.RGBA{0x44, 0xff, 0x88, 0xff}
	colHeaderBG  = color.RGBA{0x18, 0x20, 0x40, 0xff}
)

const (
	joyW = 600
	joyH = 300
)

func (s *Session) browseVisible() int { return 18 }

func (s *Session) render() {
	s.surf.Clear(colBG)
	switch s.st {
	case stateCapture:
		s.renderCapture()
	case stateReview:
		s.renderReview()
	case stateBrowse:
		s.renderBrowse()
	}
}

func (s *Session) header(title string) {
	w, _ := s.surf.Size()
	s.surf.FillRect(0, 0, w, 36, colHeaderBG)
	s.surf.Text(16, 10, title, colTitle)
}

func (s *Session) renderCapture() {
	w, _ := s.surf.Size()
	cx := w / 2

	s.header(fmt.Sprintf("Keyboard Mapping (%d/%d)", s.slot+1, mapping.NumEntries))

	jx := cx - joyW/2
	jy := 50
	s.drawJoystick(jx, jy)

	py := jy + joyH + 20
	prompt := fmt.Sprintf(">>> Press key for: %s <<<", s.table.Entry(s.slot).Label)
	pc := colText
	if s.blinkOn {
		pc = colHighlight
	}
	s.surf.TextCenter(cx, py, prompt, pc)

	sy := py + 50
	s.surf.Text(100, sy, "Mapped so far:", colTextDim)
	sy += 20
	for i := 0; i < s.slot; i++ {
		if !s.mapped[i] {
			continue
		}
		e := s.table.Entry(i)
		line := fmt.Sprintf("  %-12s = %s", e.Label, mapping.KeyName(e.Key))
		s.surf.Text(100, sy, line, colMapped)
		sy += 18
	}
}

// drawJoystick sketches the console stick with the entry being captured
// blinking: the ball plus a direction label for the eight directions,
// the matching button shape for the rest.
func (s *Session) drawJoystick(ox, oy int) {
	hl := func(i int, base color.RGBA) color.RGBA {
		if s.slot == i && s.blinkOn {
			return colHighlight
		}
		return base
	}

	// Body with a drop shadow.
	s.surf.FillRect(ox+33, oy+53, 540, 180, colBodyDark)
	s.surf.FillRect(ox+30, oy+50, 540, 180, colBody)

	s.surf.FillRect(ox+38, oy+100, 108, 40, hl(8, colBtnFire))
	s.surf.TextCenter(ox+92, oy+108, "L.Fire", colText)
	s.surf.FillRect(ox+454, oy+100, 108, 40, hl(9, colBtnFire))
	s.surf.TextCenter(ox+508, oy+108, "R.Fire", colText)

	s.surf.FillCircle(ox+220, oy+135, 50, colStickBase)
	s.surf.FillRect(ox+213, oy+60, 14, 75, colStick)

	ball := colStickTop
	if s.slot < mapping.NumDirections && s.blinkOn {
		ball = colHighlight
	}
	s.surf.FillCircle(ox+220, oy+55, 22, ball)

	if s.slot < mapping.NumDirections {
		dirOX := [...]int{0, 0, -80, 80, -60, 60, -60, 60}
		dirOY := [...]int{-40, 80, 20, 20, -30, -30, 60, 60}
		lc := colTitle
		if s.blinkOn {
			lc = colHighlight
		}
		label := strings.ToUpper(s.table.Entry(s.slot).Label)
		s.surf.TextCenter(ox+220+dirOX[s.slot], oy+55+dirOY[s.slot], label, lc)
	}

	tri := func(i, cx, cy int, name string) {
		c := hl(i, colBtn)
		s.surf.FillTriangle(cx, cy-16, cx-14, cy+10, cx+14, cy+10, c)
		s.surf.TextCenter(cx, cy+16, name, colText)
	}
	tri(10, ox+290, oy+205, "L.Tri")
	tri(11, ox+365, oy+205, "R.Tri")

	const mw, mh, gap = 50, 22, 10
	sx := ox + (joyW-4*mw-3*gap)/2
	sy := oy + 248
	for i := 0; i < 4; i++ {
		mx := sx + i*(mw+gap)
		s.surf.FillRect(mx, sy, mw, mh, hl(12+i, colBtn))
		s.surf.TextCenter(mx+mw/2, sy+3, fmt.Sprintf("M%d", i+1), colText)
	}

	s.surf.TextCenter(ox+220, oy+190, "Stick", colTextDim)
}

func (s *Session) renderReview() {
	w, _ := s.surf.Size()

	s.header("Review Key Mappings")

	y := 50
	hasDupes := s.table.HasDuplicates()

	s.surf.Text(60, y, "Action", colTextDim)
	s.surf.Text(260, y, "Key", colTextDim)
	s.surf.Text(460, y, "Joystick Output", colTextDim)
	if hasDupes {
		s.surf.Text(660, y, "Duplicate", colError)
	}
	y += 24
	s.surf.FillRect(50, y, w-100, 1, colBorder)
	y += 8

	for i := 0; i < mapping.NumEntries; i++ {
		e := s.table.Entry(i)
		hl := i == s.cursor
		if hl {
			s.surf.FillRect(50, y-2, w-100, 22, colSelected)
		}

		labelCol, keyCol := colText, colMapped
		if hl {
			labelCol, keyCol = colTitle, colTitle
		}
		s.surf.Text(60, y, e.Label, labelCol)
		s.surf.Text(260, y, mapping.KeyName(e.Key), keyCol)

		var out string
		if i < mapping.NumDirections {
			out = "Stick " + e.Label
		} else {
			out = fmt.Sprintf("BTN_%d", e.Button)
		}
		s.surf.Text(460, y, out, colTextDim)

		if hasDupes {
			var names []string
			for _, j := range s.table.Duplicates(i) {
				names = append(names, s.table.Entry(j).Label)
			}
			if len(names) > 0 {
				s.surf.Text(660, y, strings.Join(names, ", "), colError)
			}
		}
		y += 22
	}

	y += 8
	s.surf.FillRect(50, y, w-100, 1, colBorder)
	y += 8

	actions := []struct {
		row   int
		label string
		key   string
		col   color.RGBA
	}{
		{rowApply, "Apply", "A", colSuccess},
		{rowQuit, "Quit without Applying", "Q", colError},
		{rowSave, "Save to File", "S", colHighlight},
	}
	for _, a := range actions {
		c := a.col
		if s.cursor == a.row {
			s.surf.FillRect(50, y-2, w-100, 22, colSelected)
			c = colTitle
		}
		s.surf.Text(70, y, fmt.Sprintf("[%s] %s", a.key, a.label), c)
		y += 24
	}

	y += 4
	s.surf.FillRect(50, y, w-100, 1, colBorder)
	y += 8
	s.surf.Text(60, y, "Arrows=Navigate  Enter=Select  1=Redo sel  A=Apply  S=Save  Q=Quit", colTextDim)

	if s.savedPath != "" {
		y += 20
		s.surf.Text(60, y, "Saved to: "+s.savedPath, colSuccess)
	}
}

func (s *Session) renderBrowse() {
	w, h := s.surf.Size()
	b := s.browser

	s.header("Select Export Directory")

	y := 50
	s.surf.Text(60, y, "Current: "+b.path+"/", colText)
	y += 30
	s.surf.FillRect(50, y, w-100, 1, colBorder)
	y += 8

	visible := s.browseVisible()
	for i := b.scroll; i < len(b.entries) && i < b.scroll+visible; i++ {
		e := b.entries[i]
		hl := i == b.selected
		if hl {
			s.surf.FillRect(50, y-2, w-100, 22, colSelected)
		}
		c := colSuccess
		label := e.name
		if e.dir {
			c = colText
			label = "[" + e.name + "]"
		}
		if hl {
			c = colTitle
		}
		s.surf.Text(70, y, label, c)
		y += 24
	}

	hy := h - 60
	s.surf.FillRect(50, hy, w-100, 1, colBorder)
	hy += 12
	s.surf.Text(60, hy, "Arrows=Navigate  Enter=Select  Left/Bksp=Go up  Q/Esc=Cancel", colTextDim)
	hy += 20
	s.surf.Text(60, hy, "File: "+b.path+"/"+mapping.ScriptName, colTextDim)
}
