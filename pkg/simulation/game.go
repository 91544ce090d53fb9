package simulation

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/lao-tseu-is-alive/go-boids/pkg/ui"
	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/image/font/basicfont"
)

const spawnBatch = 10

// Game is the ebiten front end. It advances its Engine by one fixed step per
// ebiten tick, so the simulation runs at cfg.TicksPerSecond whatever the
// frame rate.
type Game struct {
	engine   Engine
	cfg      *Config
	dt       time.Duration
	logger   log.Logger
	snapshot *WorldSnapshot

	// UI Controls
	panel   *ui.UIPanel
	applied Settings

	// Widget references for easy access
	widgetSeparationRadius *ui.Slider
	widgetSeparationWeight *ui.Slider
	widgetAlignmentRadius  *ui.Slider
	widgetAlignmentWeight  *ui.Slider
	widgetCohesionRadius   *ui.Slider
	widgetCohesionWeight   *ui.Slider
	widgetSpeed            *ui.Slider
	widgetTurnRate         *ui.Slider // degrees per second
	widgetShowVectors      *ui.Checkbox
	widgetShowRadii        *ui.Checkbox
	widgetPaused           *ui.Checkbox

	debugOn    bool
	debugIndex int

	whiteImage *ebiten.Image
	face       *text.GoXFace

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame wires the UI to engine. Call ebiten.SetTPS(cfg.TicksPerSecond)
// before running it.
func NewGame(engine Engine, cfg *Config, logger log.Logger) *Game {
	if logger == nil {
		logger = log.DiscardLogger
	}
	g := &Game{
		engine:     engine,
		cfg:        cfg,
		dt:         time.Second / time.Duration(cfg.TicksPerSecond),
		logger:     logger,
		snapshot:   engine.Snapshot(),
		applied:    cfg.Settings(),
		debugOn:    cfg.Debug.ShowVectors || cfg.Debug.ShowRadii,
		debugIndex: cfg.Debug.DebugAgent,
		whiteImage: ebiten.NewImage(3, 3),
		face:       text.NewGoXFace(basicfont.Face7x13),
	}
	g.whiteImage.Fill(colorWhite)

	panel := ui.NewUIPanel(10, 10, 240, cfg.WorldHeight-20)
	panel.AddSection("Separation")
	g.widgetSeparationRadius = panel.AddSlider("Radius", 1, 300, cfg.Separation.Radius)
	g.widgetSeparationWeight = panel.AddSlider("Weight", 0, 1, cfg.Separation.Weight)
	panel.AddSection("Alignment")
	g.widgetAlignmentRadius = panel.AddSlider("Radius", 1, 300, cfg.Alignment.Radius)
	g.widgetAlignmentWeight = panel.AddSlider("Weight", 0, 1, cfg.Alignment.Weight)
	panel.AddSection("Cohesion")
	g.widgetCohesionRadius = panel.AddSlider("Radius", 1, 300, cfg.Cohesion.Radius)
	g.widgetCohesionWeight = panel.AddSlider("Weight", 0, 1, cfg.Cohesion.Weight)
	panel.AddSection("Motion")
	g.widgetSpeed = panel.AddSlider("Speed", 1, 400, cfg.Speed)
	g.widgetTurnRate = panel.AddSlider("Turn rate (deg/s)", 1, 720, cfg.MaxTurnRate*180/math.Pi)
	panel.AddSection("Population")
	panel.AddButton("Spawn 10", g.spawn)
	panel.AddButton("Despawn newest", g.despawn)
	panel.AddSection("Visualization")
	g.widgetShowVectors = panel.AddCheckbox("Show rule vectors", cfg.Debug.ShowVectors)
	g.widgetShowRadii = panel.AddCheckbox("Show radii", cfg.Debug.ShowRadii)
	g.widgetPaused = panel.AddCheckbox("Pause", false)
	g.panel = panel

	// The sliders clamp their values: push what they hold if it differs.
	g.applySettings()
	return g
}

func (g *Game) spawn() {
	if err := g.engine.Spawn(spawnBatch); err != nil {
		g.logger.Warnf("Spawn failed: %v", err)
	}
}

func (g *Game) despawn() {
	if err := g.engine.Despawn(-1); err != nil {
		g.logger.Warnf("Despawn failed: %v", err)
	}
}

// settings reads the current slider values.
func (g *Game) settings() Settings {
	return Settings{
		Separation:  RuleConfig{Radius: g.widgetSeparationRadius.Value, Weight: g.widgetSeparationWeight.Value},
		Alignment:   RuleConfig{Radius: g.widgetAlignmentRadius.Value, Weight: g.widgetAlignmentWeight.Value},
		Cohesion:    RuleConfig{Radius: g.widgetCohesionRadius.Value, Weight: g.widgetCohesionWeight.Value},
		Speed:       g.widgetSpeed.Value,
		MaxTurnRate: g.widgetTurnRate.Value * math.Pi / 180,
	}
}

func (g *Game) applySettings() {
	s := g.settings()
	if s == g.applied {
		return
	}
	if err := g.engine.Apply(s); err != nil {
		g.logger.Warnf("Settings rejected: %v", err)
		return
	}
	g.applied = s
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.debugOn = !g.debugOn
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			g.debugIndex--
		} else {
			g.debugIndex++
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.widgetPaused.Value = !g.widgetPaused.Value
	}
}

// debugAgent returns the index of the highlighted agent in the snapshot.
func (g *Game) debugAgent() int {
	n := len(g.snapshot.Agents)
	if !g.debugOn || n == 0 {
		return -1
	}
	return ((g.debugIndex % n) + n) % n
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()
	g.handleKeys()
	g.applySettings()

	if !g.widgetPaused.Value {
		g.engine.Step(g.dt)
	}
	g.snapshot = g.engine.Snapshot()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(colorBackground)
	g.drawWalls(screen)
	debug := g.debugAgent()
	if debug >= 0 {
		g.drawDebug(screen, &g.snapshot.Agents[debug])
	}
	g.drawBoids(screen, debug)
	g.panel.Draw(screen)
	g.drawHUD(screen)
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }
