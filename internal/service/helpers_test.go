package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"burgerpos/internal/config"
	"burgerpos/internal/dto"
	"burgerpos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	passwordCost = bcrypt.MinCost
}

// ── Recording sink ────────────────────────────────────────────────────────────

type recordingSink struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recordingSink) Changed(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recordingSink) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// ── Environment ───────────────────────────────────────────────────────────────

type testEnv struct {
	ctx      context.Context
	clock    time.Time
	bus      *EventBus
	sink     *recordingSink
	catalog  CatalogService
	auth     AuthService
	core     *Core
	shifts   ShiftService
	surfaces SurfaceService
	sales    SaleService
	checkout CheckoutService
	reports  ReportService
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8, TableCount: 15, SplitTolerance: "0.01"}
}

// newTestEnv builds a register with the demo catalog and users; nobody is logged in.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ctx:   context.Background(),
		clock: time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local),
		bus:   NewEventBus(),
		sink:  &recordingSink{},
	}
	env.bus.Subscribe(env.sink)

	cfg := testConfig()
	env.catalog = NewCatalogService(env.bus)
	env.catalog.SeedDefaults()
	env.auth = NewAuthService(cfg, env.bus)
	require.NoError(t, env.auth.SeedDefaults("admin123", "caixa123"))

	env.core = NewCore(CoreConfig{TableCount: cfg.TableCount, SplitTolerance: cfg.Tolerance()}, env.auth, env.catalog, env.bus)
	env.core.now = func() time.Time { return env.clock }

	env.shifts = NewShiftService(env.core)
	env.surfaces = NewSurfaceService(env.core)
	env.sales = NewSaleService(env.core)
	env.checkout = NewCheckoutService(env.core)
	env.reports = NewReportService(env.sales, env.shifts)
	return env
}

func (e *testEnv) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func (e *testEnv) login(t *testing.T, username, password string) {
	t.Helper()
	_, err := e.auth.Login(e.ctx, dto.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
}

// openShiftAs logs in caixa1 and opens a shift.
func (e *testEnv) openShift(t *testing.T) *model.Shift {
	t.Helper()
	e.login(t, "caixa1", "caixa123")
	sh, err := e.shifts.Open(e.ctx)
	require.NoError(t, err)
	return sh
}

func (e *testEnv) addProduct(t *testing.T, code, name, price string) *model.Product {
	t.Helper()
	p, err := e.catalog.Create(e.ctx, dto.ProductRequest{
		Code: code, Name: name, Price: decimal.RequireFromString(price), Category: model.CategoryOther,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) add(t *testing.T, surfaceID int, ref string, qty int) *model.Surface {
	t.Helper()
	sf, err := e.surfaces.AddItem(e.ctx, surfaceID, ref, qty)
	require.NoError(t, err)
	return sf
}

func (e *testEnv) surface(t *testing.T, id int) *model.Surface {
	t.Helper()
	sf, err := e.surfaces.Get(e.ctx, id)
	require.NoError(t, err)
	return sf
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
