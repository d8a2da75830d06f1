package timeline

type (
	Bool struct {
		BoolData
	}

	BoolData interface {
		Value() bool
		Enabled() bool
		setValue(bool)
	}

	Snap             Model
	ShowBeats        Model
	ShowSubdivisions Model
	WarpMode         Model
	EditMode         Model
	Playing          Model
)

func (v Bool) Toggle() {
	v.Set(!v.Value())
}

func (v Bool) Set(value bool) {
	if v.Enabled() && v.Value() != value {
		v.setValue(value)
	}
}

// Model methods

func (m *Model) Snap() *Snap                         { return (*Snap)(m) }
func (m *Model) ShowBeats() *ShowBeats               { return (*ShowBeats)(m) }
func (m *Model) ShowSubdivisions() *ShowSubdivisions { return (*ShowSubdivisions)(m) }
func (m *Model) WarpMode() *WarpMode                 { return (*WarpMode)(m) }
func (m *Model) EditMode() *EditMode                 { return (*EditMode)(m) }
func (m *Model) Playing() *Playing                   { return (*Playing)(m) }

// Snap methods

func (m *Snap) Bool() Bool          { return Bool{m} }
func (m *Snap) Value() bool         { return m.d.Snap }
func (m *Snap) setValue(value bool) { m.d.Snap = value }
func (m *Snap) Enabled() bool       { return true }

// ShowBeats methods

func (m *ShowBeats) Bool() Bool          { return Bool{m} }
func (m *ShowBeats) Value() bool         { return m.d.ShowBeats }
func (m *ShowBeats) setValue(value bool) { m.d.ShowBeats = value }
func (m *ShowBeats) Enabled() bool       { return true }

// ShowSubdivisions methods; subdivisions are drawn only together with beats.

func (m *ShowSubdivisions) Bool() Bool          { return Bool{m} }
func (m *ShowSubdivisions) Value() bool         { return m.d.ShowSubdivisions }
func (m *ShowSubdivisions) setValue(value bool) { m.d.ShowSubdivisions = value }
func (m *ShowSubdivisions) Enabled() bool       { return m.d.ShowBeats }

// WarpMode methods. Warp and edit modes exclude each other; leaving warp
// mode cancels the gesture.

func (m *WarpMode) Bool() Bool    { return Bool{m} }
func (m *WarpMode) Value() bool   { return m.d.WarpMode }
func (m *WarpMode) Enabled() bool { return m.d.Song.Duration > 0 }
func (m *WarpMode) setValue(value bool) {
	m.d.WarpMode = value
	if value {
		m.d.EditMode = false
	} else {
		m.gesture.Cancel()
	}
}

// EditMode methods

func (m *EditMode) Bool() Bool    { return Bool{m} }
func (m *EditMode) Value() bool   { return m.d.EditMode }
func (m *EditMode) Enabled() bool { return true }
func (m *EditMode) setValue(value bool) {
	m.d.EditMode = value
	if value {
		(*WarpMode)(m).setValue(false)
	}
}

// Playing methods

func (m *Playing) Bool() Bool    { return Bool{m} }
func (m *Playing) Value() bool   { return m.cursor.Playing }
func (m *Playing) Enabled() bool { return m.d.Song.Duration > 0 }
func (m *Playing) setValue(value bool) {
	(*Model)(m).setPlaying(value, (*Model)(m).now())
}
