package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocator_Validate(t *testing.T) {
	tests := []struct {
		name    string
		loc     Locator
		wantErr bool
	}{
		{"id", ByID("user-name"), false},
		{"css", ByCSS(".shopping_cart_link"), false},
		{"xpath", ByXPath("//div[@class='cart_item']"), false},
		{"empty value", ByCSS("  "), true},
		{"unknown strategy", Locator{Strategy: "link-text", Value: "Cart"}, true},
		{"zero", Locator{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.loc.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidLocator))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocator_CSS(t *testing.T) {
	sel, ok := ByID("login-button").CSS()
	assert.True(t, ok)
	assert.Equal(t, `[id="login-button"]`, sel)

	sel, ok = ByCSS("#inventory_container").CSS()
	assert.True(t, ok)
	assert.Equal(t, "#inventory_container", sel)

	_, ok = ByXPath("//button").CSS()
	assert.False(t, ok)
}

func TestLocator_String(t *testing.T) {
	assert.Equal(t, "id=password", ByID("password").String())
	assert.Equal(t, "xpath=//a", ByXPath("//a").String())
}

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sauce Labs Backpack", `"Sauce Labs Backpack"`},
		{`Test.allTheThings() T-Shirt (Red)`, `"Test.allTheThings() T-Shirt (Red)"`},
		{`say "hi"`, `'say "hi"'`},
		{`it's "ok"`, `concat("it's ", '"', "ok", '"')`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, XPathLiteral(tt.in))
		})
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://www.saucedemo.com/",
		"http://127.0.0.1:8080/inventory.html",
		"about:blank",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateURL(u), u)
	}

	invalid := []string{"", "ftp://example.com", "javascript:alert(1)", "http://", "://nope"}
	for _, u := range invalid {
		assert.ErrorIs(t, ValidateURL(u), ErrInvalidURL, u)
	}
}
