package browsertest

import (
	"strings"
	"time"

	"swagflow/internal/domain/entity"
	"swagflow/internal/domain/swaglabs"
)

type StoreOptions struct {
	// RenderDelay postpones the inventory container after login, the way
	// the real store renders its product list client side.
	RenderDelay time.Duration
	// AlertOnLogin opens a JS alert right after a successful login.
	AlertOnLogin bool
	// PasswordBubble shows a save-password prompt after login.
	PasswordBubble bool
}

// Store simulates the Swag Labs pages on a fake Browser.
type Store struct {
	b    *Browser
	base string
	opts StoreOptions
	cart map[string]bool
}

func InstallSwagLabs(b *Browser, baseURL string, opts StoreOptions) *Store {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	s := &Store{b: b, base: baseURL, opts: opts, cart: make(map[string]bool)}
	b.Route(baseURL, s.loginPage)
	b.Route(baseURL+swaglabs.InventoryPath, s.inventoryPage)
	b.Route(baseURL+swaglabs.CartPath, s.cartPage)
	return s
}

// InCart reports the store-side cart state. Call it only while no OnClick
// callback is running.
func (s *Store) InCart(name string) bool {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.cart[name]
}

func (s *Store) loginPage(b *Browser) {
	b.SetTitleLocked(swaglabs.Title)
	user := b.PutLocked(swaglabs.UsernameInput(), &Element{})
	pass := b.PutLocked(swaglabs.PasswordInput(), &Element{})
	b.PutLocked(swaglabs.LoginButton(), &Element{
		Text: "Login",
		OnClick: func(b *Browser) {
			msg := loginError(user.Value, pass.Value)
			if msg != "" {
				b.PutLocked(swaglabs.ErrorBanner(), &Element{Text: msg})
				return
			}
			b.Goto(s.base + swaglabs.InventoryPath)
			if s.opts.AlertOnLogin {
				b.SetAlertLocked(true)
			}
			if s.opts.PasswordBubble {
				b.PutLocked(passwordBubbleButton(), &Element{
					Text: "Not now",
					OnClick: func(b *Browser) {
						b.RemoveLocked(passwordBubbleButton())
					},
				})
			}
		},
	})
}

func loginError(user, pass string) string {
	switch {
	case user == "":
		return swaglabs.ErrorPrefix + ": Username is required"
	case pass == "":
		return swaglabs.ErrorPrefix + ": Password is required"
	case user == swaglabs.LockedOutUser && pass == swaglabs.Password:
		return swaglabs.ErrorPrefix + ": Sorry, this user has been locked out."
	case user == swaglabs.StandardUser && pass == swaglabs.Password:
		return ""
	default:
		return swaglabs.ErrorPrefix + ": Username and password do not match any user in this service"
	}
}

func (s *Store) inventoryPage(b *Browser) {
	b.SetTitleLocked(swaglabs.Title)
	if s.opts.RenderDelay > 0 {
		b.PutAfterLocked(swaglabs.InventoryContainer(), &Element{}, s.opts.RenderDelay)
	} else {
		b.PutLocked(swaglabs.InventoryContainer(), &Element{})
	}
	b.PutLocked(swaglabs.CartLink(), &Element{
		OnClick: func(b *Browser) {
			b.Goto(s.base + swaglabs.CartPath)
		},
	})
	for _, name := range swaglabs.Catalogue() {
		b.PutLocked(swaglabs.ItemName(name), &Element{Text: name})
		s.putToggle(b, name)
	}
}

func (s *Store) putToggle(b *Browser, name string) {
	if s.cart[name] {
		b.RemoveLocked(swaglabs.AddButton(name))
		b.PutLocked(swaglabs.RemoveButton(name), &Element{
			Text: "Remove",
			OnClick: func(b *Browser) {
				delete(s.cart, name)
				s.putToggle(b, name)
			},
		})
		return
	}
	b.RemoveLocked(swaglabs.RemoveButton(name))
	b.PutLocked(swaglabs.AddButton(name), &Element{
		Text: "Add to cart",
		OnClick: func(b *Browser) {
			s.cart[name] = true
			s.putToggle(b, name)
		},
	})
}

func (s *Store) cartPage(b *Browser) {
	b.SetTitleLocked(swaglabs.Title)
	b.PutLocked(swaglabs.CartHeaderTitle(), &Element{Text: swaglabs.CartHeader})
	for name := range s.cart {
		b.PutLocked(swaglabs.CartItem(name), &Element{Text: name})
	}
}

// passwordBubbleButton matches one of the default password-manager
// dismissal candidates.
func passwordBubbleButton() entity.Locator {
	return entity.ByXPath("//button[normalize-space()=" + entity.XPathLiteral("Not now") + "]")
}
