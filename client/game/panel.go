package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/cbodonnell/skirmish/client/fonts"
	"github.com/cbodonnell/skirmish/client/ui"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const panelPadding = 8

var panelBackground = color.NRGBA{R: 0x14, G: 0x14, B: 0x1c, A: 0xf0}

// PanelLines returns the text shown in the side panel.
func (g *Game) PanelLines() []string {
	lines := []string{fmt.Sprintf("Mode: %s", g.mode)}
	if g.lastError != nil {
		lines = append(lines, ui.Message(g.lastError, "Simulation unreachable"))
	}
	observer := g.store.Observer()
	if observer == "" {
		lines = append(lines, "Observer: none (Tab)")
	} else {
		lines = append(lines, fmt.Sprintf("Observer: %s", g.label(observer)))
	}
	lines = append(lines, "")
	for _, id := range g.store.EntityIDs() {
		e, _ := g.store.Entity(id)
		marker := " "
		if id == observer {
			marker = ">"
		}
		state := ""
		switch {
		case e.IsDead():
			state = " dead"
		case g.movement.IsAnimating(id):
			state = " moving"
		case g.combat.Pending(id):
			state = " attacking"
		}
		lines = append(lines, fmt.Sprintf("%s %s %d/%d%s", marker, g.label(id), e.HP, e.MaxHP, state))
	}
	return lines
}

func (g *Game) label(id string) string {
	e, ok := g.store.Entity(id)
	if !ok || e.Name == "" {
		return id
	}
	return e.Name
}

// covered reports whether a screen point lies on the side panel.
func (g *Game) covered(x, y float64) bool {
	return g.sidePanelWidth > 0 && x >= float64(g.width)-g.sidePanelWidth
}

type sidePanel struct {
	ui     *ebitenui.UI
	status *widget.Text
}

func newSidePanel(width float64, cycle, lift func()) *sidePanel {
	buttonImage := &widget.ButtonImage{
		Idle:    image.NewNineSliceColor(color.NRGBA{R: 70, G: 70, B: 90, A: 255}),
		Hover:   image.NewNineSliceColor(color.NRGBA{R: 90, G: 90, B: 115, A: 255}),
		Pressed: image.NewNineSliceColor(color.NRGBA{R: 50, G: 50, B: 65, A: 255}),
	}
	buttonText := &widget.ButtonTextColor{
		Idle:     color.NRGBA{254, 255, 255, 255},
		Disabled: color.NRGBA{R: 200, G: 200, B: 200, A: 255},
	}

	rootContainer := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(panelBackground)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(panelPadding),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(panelPadding)),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				StretchVertical:    true,
			}),
			widget.WidgetOpts.MinSize(int(width), 0),
		),
	)
	rootContainer.AddChild(panel)

	for _, b := range []struct {
		label   string
		onClick func()
	}{
		{label: "Next observer", onClick: cycle},
		{label: "Lift fog", onClick: lift},
	} {
		onClick := b.onClick
		button := widget.NewButton(
			widget.ButtonOpts.WidgetOpts(
				widget.WidgetOpts.LayoutData(widget.RowLayoutData{
					Stretch: true,
				}),
			),
			widget.ButtonOpts.Image(buttonImage),
			widget.ButtonOpts.Text(b.label, fonts.PanelFont, buttonText),
			widget.ButtonOpts.TextPadding(widget.Insets{
				Left:   12,
				Right:  12,
				Top:    4,
				Bottom: 4,
			}),
		)
		button.ClickedEvent.AddHandler(func(args interface{}) {
			onClick()
		})
		panel.AddChild(button)
	}

	status := widget.NewText(
		widget.TextOpts.Text("", fonts.PanelFont, color.NRGBA{R: 230, G: 230, B: 230, A: 255}),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Stretch: true,
			}),
		),
	)
	panel.AddChild(status)

	return &sidePanel{
		ui:     &ebitenui.UI{Container: rootContainer},
		status: status,
	}
}

// ensurePanel builds the panel widgets on first use so that no images are
// allocated before the game loop runs.
func (g *Game) ensurePanel() *sidePanel {
	if g.sidePanelWidth <= 0 {
		return nil
	}
	if g.panel == nil {
		g.panel = newSidePanel(g.sidePanelWidth, g.input.CycleObserver, g.input.ClearObserver)
	}
	return g.panel
}

func (g *Game) updateSidePanel() {
	if p := g.ensurePanel(); p != nil {
		p.ui.Update()
	}
}

func (g *Game) drawSidePanel(screen *ebiten.Image) {
	p := g.ensurePanel()
	if p == nil {
		return
	}
	p.status.Label = strings.Join(g.PanelLines(), "\n")
	p.ui.Draw(screen)
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n   TPS: %0.1f", ebiten.ActualTPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n   Renders: %d", g.scene.RenderCount()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n   Zoom: %0.2f", g.transform.Zoom()))
	if !g.lastPoll.IsZero() {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n   Last poll: %s", g.lastPoll.Format("15:04:05")))
	}
}
