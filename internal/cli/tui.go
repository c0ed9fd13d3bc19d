package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/interact"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	errorLineStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// dragStep is how far one arrow press moves a dragged card, in layout units.
const dragStep = 10.0

// overlay selects which dialog is drawn over the person list. The machine
// tracks the interaction state proper; the overlay adds the picker steps the
// terminal needs (choosing a couple or an edge from a list).
type overlay int

const (
	overlayNone overlay = iota
	overlayEditor
	overlayRole
	overlayCouple
	overlayFlipPick
	overlayFlipConfirm
	overlayDelete
)

// coupleChoice is one entry in the couple or edge picker.
type coupleChoice struct {
	coupleID string // empty means create a new couple
	label    string
}

// editorField is one editable line in the person editor.
type editorField struct {
	label string
	value string
	apply func(*family.PersonUpdate, string)
}

// browseModel is the bubbletea model for the browse command. Domain calls
// run inline in Update; the machine never touches the store, it only sees
// their outcomes.
type browseModel struct {
	ctx     context.Context
	fam     *family.Service
	engine  *layout.Engine
	scene   *scene.Scene
	machine *interact.Machine

	graph *family.Graph
	lay   *layout.Layout
	rows  []family.Person // person list, generation order

	cursor int
	offset int
	height int

	overlay    overlay
	status     string
	fatal      error
	built      bool
	dragID     string
	dragX      float64
	dragY      float64
	anchorRole family.Role // role of the anchor in a new couple

	choices      []coupleChoice
	choiceCursor int

	editorID     string
	editorOrig   family.Person
	editorFields []editorField
	editorCursor int
}

func newBrowseModel(ctx context.Context, fam *family.Service, engine *layout.Engine, sc *scene.Scene) (browseModel, error) {
	m := browseModel{
		ctx:     ctx,
		fam:     fam,
		engine:  engine,
		scene:   sc,
		machine: interact.New(),
		height:  15,
	}
	if err := m.reload(); err != nil {
		return browseModel{}, err
	}
	return m, nil
}

// reload refetches the tree, recomputes the layout, and rebinds the scene.
func (m *browseModel) reload() error {
	g, err := m.fam.Tree(m.ctx)
	if err != nil {
		return err
	}
	l, err := m.engine.Layout(g)
	if err != nil {
		return err
	}
	if !m.built {
		m.scene.Build(l, g)
		m.built = true
	} else {
		m.scene.Rebind(l, g)
	}
	m.graph = g
	m.lay = l

	m.rows = append(m.rows[:0], g.Persons...)
	sort.Slice(m.rows, func(i, j int) bool {
		ri, rj := m.rank(m.rows[i].ID), m.rank(m.rows[j].ID)
		if ri != rj {
			return ri < rj
		}
		return m.xpos(m.rows[i].ID) < m.xpos(m.rows[j].ID)
	})
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return nil
}

func (m *browseModel) rank(id string) int {
	if n, ok := m.lay.Node(id); ok {
		return n.Rank
	}
	return 0
}

func (m *browseModel) xpos(id string) float64 {
	if n, ok := m.lay.Node(id); ok {
		return n.X
	}
	return 0
}

func (m *browseModel) current() (family.Person, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return family.Person{}, false
	}
	return m.rows[m.cursor], true
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayEditor:
		return m.handleEditorKey(msg)
	case overlayRole:
		return m.handleRoleKey(msg)
	case overlayCouple, overlayFlipPick:
		return m.handlePickerKey(msg)
	case overlayFlipConfirm:
		return m.handleFlipConfirmKey(msg)
	case overlayDelete:
		return m.handleDeleteKey(msg)
	}

	if m.machine.State() == interact.StateDragging {
		return m.handleDragKey(msg)
	}
	return m.handleListKey(msg)
}

func (m browseModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter":
		if p, ok := m.current(); ok {
			m.applyEffects(m.machine.Handle(interact.ClickNode{ID: p.ID}))
		}
	case "esc":
		m.applyEffects(m.machine.Handle(interact.ClickBackground{}))
	case "e":
		if m.machine.State() == interact.StateNodeSelected {
			m.applyEffects(m.machine.Handle(interact.ChooseEdit{}))
		}
	case "a":
		if m.machine.State() == interact.StateNodeSelected {
			m.applyEffects(m.machine.Handle(interact.ChooseAddRelation{}))
			if m.machine.State() == interact.StateRelationPrompt {
				m.overlay = overlayRole
			}
		}
	case "f":
		if m.machine.State() == interact.StateNodeSelected {
			m.openFlipPicker()
		}
	case "m":
		if p, ok := m.current(); ok && m.machine.State() == interact.StateNodeSelected {
			m.applyEffects(m.machine.Handle(interact.DragStart{ID: p.ID}))
			if el, found := m.scene.Element(p.ID); found {
				m.dragID, m.dragX, m.dragY = p.ID, el.X, el.Y
			}
		}
	case "n":
		p, err := m.fam.CreatePerson(m.ctx, family.PersonFields{})
		if err != nil {
			m.status = err.Error()
			break
		}
		if err := m.reload(); err != nil {
			m.fatal = err
			return m, tea.Quit
		}
		m.selectPerson(p.ID)
		m.applyEffects(m.machine.Handle(interact.ClickNode{ID: p.ID}))
	case "D":
		if m.machine.State() == interact.StateNodeSelected {
			m.overlay = overlayDelete
		}
	}
	return m, nil
}

// selectPerson moves the cursor to the row holding the given person.
func (m *browseModel) selectPerson(id string) {
	for i, p := range m.rows {
		if p.ID == id {
			m.cursor = i
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
			return
		}
	}
}

// =============================================================================
// Drag
// =============================================================================

func (m browseModel) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		m.dragY -= dragStep
	case "down":
		m.dragY += dragStep
	case "left":
		m.dragX -= dragStep
	case "right":
		m.dragX += dragStep
	case "enter":
		m.applyEffects(m.machine.Handle(interact.DragEnd{X: m.dragX, Y: m.dragY}))
		m.dragID = ""
	case "esc", "q":
		m.applyEffects(m.machine.Handle(interact.Cancel{}))
		m.dragID = ""
	}
	return m, nil
}

// =============================================================================
// Relation flow: role prompt, couple picker
// =============================================================================

func (m browseModel) handleRoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p": // spouse: both partners
		m.chooseRole(family.RolePartner, family.RolePartner)
	case "r": // parent: new partner, anchor child
		m.chooseRole(family.RolePartner, family.RoleChild)
	case "c": // child: anchor partner
		m.chooseRole(family.RoleChild, family.RolePartner)
	case "esc", "q":
		m.overlay = overlayNone
		m.applyEffects(m.machine.Handle(interact.Cancel{}))
	}
	return m, nil
}

// chooseRole records the new person's role on the machine and opens the
// couple picker. Existing couples where the anchor already holds anchorRole
// are offered for reuse alongside a fresh couple.
func (m *browseModel) chooseRole(newRole, anchorRole family.Role) {
	m.applyEffects(m.machine.Handle(interact.ChooseRole{Role: newRole}))
	m.anchorRole = anchorRole

	membership, err := m.fam.ListCouplesForPerson(m.ctx, m.machine.Selected())
	if err != nil {
		m.status = err.Error()
		m.overlay = overlayNone
		m.applyEffects(m.machine.Handle(interact.Cancel{}))
		return
	}

	existing := membership.AsPartner
	if anchorRole == family.RoleChild {
		existing = membership.AsChild
	}

	m.choices = m.choices[:0]
	for _, id := range existing {
		m.choices = append(m.choices, coupleChoice{coupleID: id, label: m.coupleLabel(id)})
	}
	m.choices = append(m.choices, coupleChoice{label: "new family unit"})
	m.choiceCursor = 0
	m.overlay = overlayCouple
}

// coupleLabel names a couple by its partners.
func (m *browseModel) coupleLabel(coupleID string) string {
	names := make(map[string]string, len(m.graph.Persons))
	for _, p := range m.graph.Persons {
		names[p.ID] = p.Name()
	}
	var partners []string
	for _, e := range m.graph.Partnerships {
		if e.CoupleID == coupleID {
			partners = append(partners, names[e.PersonID])
		}
	}
	if len(partners) == 0 {
		return "unit " + coupleID
	}
	sort.Strings(partners)
	return strings.Join(partners, " & ")
}

func (m browseModel) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.choiceCursor > 0 {
			m.choiceCursor--
		}
	case "down", "j":
		if m.choiceCursor < len(m.choices)-1 {
			m.choiceCursor++
		}
	case "enter":
		if m.overlay == overlayCouple {
			m.completeRelation(m.choices[m.choiceCursor])
		} else {
			m.overlay = overlayFlipConfirm
			p, _ := m.current()
			m.applyEffects(m.machine.Handle(interact.ClickEdge{
				PersonID: p.ID,
				CoupleID: m.choices[m.choiceCursor].coupleID,
			}))
		}
	case "esc", "q":
		m.overlay = overlayNone
		m.applyEffects(m.machine.Handle(interact.Cancel{}))
	}
	return m, nil
}

// completeRelation runs the domain side of the add-relative flow and feeds
// the outcome to the machine. A blank person is created so the editor that
// opens next starts from placeholders.
func (m *browseModel) completeRelation(choice coupleChoice) {
	coupleID := choice.coupleID
	if coupleID == "" {
		couple, err := m.fam.CreateCouple(m.ctx, m.machine.Selected(), m.anchorRole)
		if err != nil {
			// The machine keeps the prompt open on failure; so does the picker.
			m.applyEffects(m.machine.Handle(interact.ChooseCouple{Err: err}))
			m.status = err.Error()
			return
		}
		coupleID = couple.ID
	}

	np, err := m.fam.CreatePersonAndLink(m.ctx, coupleID, m.machine.Role(), family.PersonFields{})
	effects := m.machine.Handle(interact.ChooseCouple{
		CoupleID:    coupleID,
		NewPersonID: np.ID,
		Err:         err,
	})
	if err != nil {
		m.status = err.Error()
		return
	}
	m.overlay = overlayNone
	m.applyEffects(effects)
}

// =============================================================================
// Flip flow
// =============================================================================

// openFlipPicker lists the selected person's couple edges. One edge skips
// straight to the confirm prompt.
func (m *browseModel) openFlipPicker() {
	p, ok := m.current()
	if !ok {
		return
	}
	membership, err := m.fam.ListCouplesForPerson(m.ctx, p.ID)
	if err != nil {
		m.status = err.Error()
		return
	}

	m.choices = m.choices[:0]
	for _, id := range membership.AsPartner {
		m.choices = append(m.choices, coupleChoice{coupleID: id, label: "partner of " + m.coupleLabel(id)})
	}
	for _, id := range membership.AsChild {
		m.choices = append(m.choices, coupleChoice{coupleID: id, label: "child of " + m.coupleLabel(id)})
	}
	if len(m.choices) == 0 {
		m.status = "no relations to flip"
		return
	}
	if len(m.choices) == 1 {
		m.overlay = overlayFlipConfirm
		m.applyEffects(m.machine.Handle(interact.ClickEdge{PersonID: p.ID, CoupleID: m.choices[0].coupleID}))
		return
	}
	m.choiceCursor = 0
	m.overlay = overlayFlipPick
}

func (m browseModel) handleFlipConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		personID, coupleID := m.machine.FlipEdge()
		err := m.fam.FlipEdge(m.ctx, personID, coupleID)
		m.overlay = overlayNone
		m.applyEffects(m.machine.Handle(interact.Confirm{Err: err}))
		if err != nil {
			m.status = err.Error()
		}
	case "n", "esc", "q":
		m.overlay = overlayNone
		m.applyEffects(m.machine.Handle(interact.Cancel{}))
	}
	return m, nil
}

// =============================================================================
// Delete flow
// =============================================================================

func (m browseModel) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		p, ok := m.current()
		m.overlay = overlayNone
		if !ok {
			return m, nil
		}
		if err := m.fam.DeletePerson(m.ctx, p.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.applyEffects(m.machine.Handle(interact.ClickBackground{}))
		if err := m.reload(); err != nil {
			m.fatal = err
			return m, tea.Quit
		}
	case "n", "esc", "q":
		m.overlay = overlayNone
	}
	return m, nil
}

// =============================================================================
// Editor
// =============================================================================

// openEditor loads the person and builds the field list.
func (m *browseModel) openEditor(personID string) {
	p, err := m.fam.GetPerson(m.ctx, personID)
	if err != nil {
		m.status = err.Error()
		m.applyEffects(m.machine.Handle(interact.Cancel{}))
		return
	}
	m.editorID = p.ID
	m.editorOrig = p
	m.editorCursor = 0
	m.editorFields = []editorField{
		{"First name", p.FirstName, func(u *family.PersonUpdate, v string) { u.FirstName = &v }},
		{"Last name", p.LastName, func(u *family.PersonUpdate, v string) { u.LastName = &v }},
		{"Display name", p.DisplayName, func(u *family.PersonUpdate, v string) { u.DisplayName = &v }},
		{"Birth date", p.BirthDate, func(u *family.PersonUpdate, v string) { u.BirthDate = &v }},
		{"Birth place", p.BirthPlace, func(u *family.PersonUpdate, v string) { u.BirthPlace = &v }},
		{"Death date", p.DeathDate, func(u *family.PersonUpdate, v string) { u.DeathDate = &v }},
		{"Death place", p.DeathPlace, func(u *family.PersonUpdate, v string) { u.DeathPlace = &v }},
		{"Profession", p.Profession, func(u *family.PersonUpdate, v string) { u.Profession = &v }},
		{"Notes", p.Notes, func(u *family.PersonUpdate, v string) { u.Notes = &v }},
		{"Gender (male/female)", string(p.Gender), func(u *family.PersonUpdate, v string) {
			g := family.Gender(v)
			u.Gender = &g
		}},
	}
	m.overlay = overlayEditor
}

func (m browseModel) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.editorFields[m.editorCursor]
	switch msg.Type {
	case tea.KeyEsc:
		m.overlay = overlayNone
		m.applyEffects(m.machine.Handle(interact.Cancel{}))
	case tea.KeyUp:
		if m.editorCursor > 0 {
			m.editorCursor--
		}
	case tea.KeyDown, tea.KeyTab:
		if m.editorCursor < len(m.editorFields)-1 {
			m.editorCursor++
		}
	case tea.KeyBackspace:
		if len(f.value) > 0 {
			r := []rune(f.value)
			f.value = string(r[:len(r)-1])
		}
	case tea.KeyEnter:
		m.saveEditor()
	case tea.KeyRunes:
		f.value += string(msg.Runes)
	case tea.KeySpace:
		f.value += " "
	}
	return m, nil
}

// saveEditor diffs the fields against the loaded person and submits a
// partial update. The outcome rides on the Save event.
func (m *browseModel) saveEditor() {
	orig := []string{
		m.editorOrig.FirstName, m.editorOrig.LastName, m.editorOrig.DisplayName,
		m.editorOrig.BirthDate, m.editorOrig.BirthPlace,
		m.editorOrig.DeathDate, m.editorOrig.DeathPlace,
		m.editorOrig.Profession, m.editorOrig.Notes, string(m.editorOrig.Gender),
	}
	var upd family.PersonUpdate
	changed := false
	for i, f := range m.editorFields {
		if f.value != orig[i] {
			f.apply(&upd, f.value)
			changed = true
		}
	}

	var err error
	if changed {
		_, err = m.fam.UpdatePerson(m.ctx, m.editorID, upd)
	}
	effects := m.machine.Handle(interact.Save{PersonID: m.editorID, Err: err})
	if err != nil {
		m.status = err.Error()
		return
	}
	m.overlay = overlayNone
	m.applyEffects(effects)
}

// =============================================================================
// Effects
// =============================================================================

// applyEffects executes the machine's instructions against the scene and the
// store-backed views.
func (m *browseModel) applyEffects(effects []interact.Effect) {
	for _, eff := range effects {
		switch eff := eff.(type) {
		case interact.FieldEditSync:
			p, err := m.fam.GetPerson(m.ctx, eff.PersonID)
			if err != nil {
				m.status = err.Error()
				continue
			}
			m.scene.UpdateNode(p)
			for i := range m.rows {
				if m.rows[i].ID == p.ID {
					m.rows[i] = p
				}
			}
		case interact.StructuralSync:
			if err := m.reload(); err != nil {
				m.fatal = err
			}
		case interact.PinPosition:
			m.scene.Pin(eff.NodeID, eff.X, eff.Y)
		case interact.OpenEditor:
			m.selectPerson(eff.PersonID)
			m.openEditor(eff.PersonID)
		}
	}
}

// =============================================================================
// View
// =============================================================================

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.helpLine()))
	b.WriteString("\n\n")
	b.WriteString(m.listView())

	switch m.overlay {
	case overlayEditor:
		b.WriteString("\n")
		b.WriteString(m.editorView())
	case overlayRole:
		b.WriteString("\n")
		b.WriteString(StyleTitle.Render("Add Relative"))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("p partner  r parent  c child  esc cancel"))
		b.WriteString("\n")
	case overlayCouple, overlayFlipPick:
		b.WriteString("\n")
		b.WriteString(m.pickerView())
	case overlayFlipConfirm:
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("Flip this relation between partner and child? (y/n)"))
		b.WriteString("\n")
	case overlayDelete:
		if p, ok := m.current(); ok {
			b.WriteString("\n")
			b.WriteString(StyleWarning.Render(fmt.Sprintf("Delete %s and their relations? (y/n)", p.Name())))
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorLineStyle.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m browseModel) helpLine() string {
	switch {
	case m.overlay == overlayEditor:
		return "↑/↓ field  type to edit  ⏎ save  esc cancel"
	case m.machine.State() == interact.StateDragging:
		return "arrows move card  ⏎ pin  esc cancel"
	case m.machine.State() == interact.StateNodeSelected:
		return "e edit  a add relative  f flip relation  m move  D delete  esc deselect  q quit"
	default:
		return "↑/↓ navigate  ⏎ select  n new person  q quit"
	}
}

func (m browseModel) listView() string {
	if len(m.rows) == 0 {
		return listDimStyle.Render("  empty tree, press n to add the first person") + "\n"
	}

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		p := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		marker := ""
		if p.ID == m.machine.Selected() {
			marker = "●"
		}
		born := p.BirthDate
		if p.Deceased() {
			born += " † " + p.DeathDate
		}
		rows = append(rows, []string{
			cursor,
			p.Name(),
			fmt.Sprintf("%d", m.rank(p.ID)/2),
			born,
			p.Profession,
			marker,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Gen", "Born", "Profession", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))
	b.WriteString("\n")
	return b.String()
}

func (m browseModel) pickerView() string {
	title := "Choose Family Unit"
	if m.overlay == overlayFlipPick {
		title = "Choose Relation to Flip"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	for i, c := range m.choices {
		cursor := "  "
		if i == m.choiceCursor {
			cursor = "▸ "
		}
		line := cursor + c.label
		if i == m.choiceCursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("⏎ select  esc cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m browseModel) editorView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Edit " + m.editorOrig.Name()))
	b.WriteString("\n")
	for i, f := range m.editorFields {
		cursor := "  "
		if i == m.editorCursor {
			cursor = "▸ "
		}
		label := lipgloss.NewStyle().Foreground(colorGray).Width(22).Render(f.label)
		value := f.value
		if i == m.editorCursor {
			value = listSelectedStyle.Render(value + "│")
		} else {
			value = StyleValue.Render(value)
		}
		b.WriteString(cursor + label + " " + value)
		b.WriteString("\n")
	}
	return b.String()
}
