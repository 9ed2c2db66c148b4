package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"swagflow/internal/domain/entity"
	"swagflow/internal/domain/swaglabs"
	"swagflow/internal/usecase/pageflow"
)

var ErrUnknownScenario = errors.New("unknown scenario")

type Credentials struct {
	Username string
	Password string
}

func DefaultCredentials() Credentials {
	return Credentials{Username: swaglabs.StandardUser, Password: swaglabs.Password}
}

// Session is what a scenario body sees: the page objects bound to one
// browser session. Flows finished through the session are recorded on the
// outcome.
type Session struct {
	Login     *pageflow.LoginPage
	Inventory *pageflow.InventoryPage
	Creds     Credentials

	flows []entity.FlowRecord
}

func (s *Session) track(flow *entity.Flow, err error) (*entity.Flow, error) {
	if flow != nil {
		s.flows = append(s.flows, flow.Record())
	}
	return flow, err
}

func (s *Session) Flows() []entity.FlowRecord {
	out := make([]entity.FlowRecord, len(s.flows))
	copy(out, s.flows)
	return out
}

func (s *Session) login(ctx context.Context, username, password string) (*entity.Flow, error) {
	return s.track(s.Login.Login(ctx, username, password))
}

func (s *Session) addItem(ctx context.Context, name string) (*entity.Flow, error) {
	return s.track(s.Inventory.AddItemToCart(ctx, name))
}

func (s *Session) removeItem(ctx context.Context, name string) (*entity.Flow, error) {
	return s.track(s.Inventory.RemoveItemFromCart(ctx, name))
}

func (s *Session) openCart(ctx context.Context) (*entity.Flow, error) {
	return s.track(s.Inventory.OpenCart(ctx))
}

type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, s *Session) error
}

// Catalog returns the built-in Swag Labs scenarios in run order.
func Catalog() []Scenario {
	return []Scenario{
		{
			Name:        "login-valid",
			Description: "standard user logs in and lands on the inventory",
			Run:         loginValid,
		},
		{
			Name:        "login-invalid",
			Description: "wrong password is rejected with an error banner",
			Run:         loginInvalid,
		},
		{
			Name:        "add-remove",
			Description: "add the backpack to the cart, then remove it",
			Run:         addRemove,
		},
		{
			Name:        "add-open-cart",
			Description: "add the backpack and find it in the cart",
			Run:         addOpenCart,
		},
	}
}

// Select picks scenarios by name, keeping the catalog order. No names
// selects everything.
func Select(all []Scenario, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.TrimSpace(n)] = true
	}

	var selected []Scenario
	for _, sc := range all {
		if wanted[sc.Name] {
			selected = append(selected, sc)
			delete(wanted, sc.Name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for n := range wanted {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, strings.Join(unknown, ", "))
	}
	return selected, nil
}

func loginAsUser(ctx context.Context, s *Session) error {
	if err := s.Login.Open(ctx); err != nil {
		return err
	}
	if _, err := s.login(ctx, s.Creds.Username, s.Creds.Password); err != nil {
		return err
	}
	if !s.Inventory.IsAtInventoryPage(ctx) {
		return errors.New("login confirmed but inventory page not shown")
	}
	return nil
}

func loginValid(ctx context.Context, s *Session) error {
	if err := loginAsUser(ctx, s); err != nil {
		return err
	}
	if res := s.Login.WaitForTitleContains(ctx, swaglabs.Title); !res.OK() {
		return fmt.Errorf("title never contained %q: %s", swaglabs.Title, res)
	}
	return nil
}

func loginInvalid(ctx context.Context, s *Session) error {
	if err := s.Login.Open(ctx); err != nil {
		return err
	}

	flow, err := s.login(ctx, s.Creds.Username, "wrong_password")
	if err == nil {
		return errors.New("login with a wrong password was accepted")
	}
	var flowErr *entity.FlowError
	if !errors.As(err, &flowErr) || flow == nil || flow.State != entity.FlowFailed {
		return err
	}
	if !strings.Contains(flow.Message, swaglabs.ErrorPrefix) {
		return fmt.Errorf("expected %q error banner, got %q", swaglabs.ErrorPrefix, flow.Message)
	}
	return nil
}

func addRemove(ctx context.Context, s *Session) error {
	if err := loginAsUser(ctx, s); err != nil {
		return err
	}
	if _, err := s.addItem(ctx, swaglabs.Backpack); err != nil {
		return err
	}
	if !s.Inventory.IsRemoveButtonVisible(ctx, swaglabs.Backpack) {
		return errors.New("remove button not visible after adding item")
	}
	if _, err := s.removeItem(ctx, swaglabs.Backpack); err != nil {
		return err
	}
	if s.Inventory.IsRemoveButtonVisible(ctx, swaglabs.Backpack) {
		return errors.New("remove button still visible after removing item")
	}
	return nil
}

func addOpenCart(ctx context.Context, s *Session) error {
	if err := loginAsUser(ctx, s); err != nil {
		return err
	}
	if _, err := s.addItem(ctx, swaglabs.Backpack); err != nil {
		return err
	}
	if _, err := s.openCart(ctx); err != nil {
		return err
	}
	if !s.Inventory.IsAtCartPage(ctx) {
		return errors.New("cart page not shown")
	}
	if !s.Inventory.IsItemInCart(ctx, swaglabs.Backpack) {
		return fmt.Errorf("%s missing from cart", swaglabs.Backpack)
	}
	if s.Inventory.IsItemInCart(ctx, swaglabs.BoltTShirt) {
		return fmt.Errorf("%s unexpectedly in cart", swaglabs.BoltTShirt)
	}
	return nil
}
