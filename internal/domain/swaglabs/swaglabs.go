// Package swaglabs holds what the suite knows about the Swag Labs demo
// store: its locators, page titles, accounts and catalogue.
package swaglabs

import "swagflow/internal/domain/entity"

const (
	Title         = "Swag Labs"
	InventoryPath = "inventory.html"
	CartPath      = "cart.html"
	CartHeader    = "Your Cart"
	ErrorPrefix   = "Epic sadface"

	StandardUser  = "standard_user"
	LockedOutUser = "locked_out_user"
	Password      = "secret_sauce"
)

const (
	Backpack     = "Sauce Labs Backpack"
	BikeLight    = "Sauce Labs Bike Light"
	BoltTShirt   = "Sauce Labs Bolt T-Shirt"
	FleeceJacket = "Sauce Labs Fleece Jacket"
	Onesie       = "Sauce Labs Onesie"
	RedTShirt    = "Test.allTheThings() T-Shirt (Red)"
)

// Catalogue returns the six products in display order.
func Catalogue() []string {
	return []string{Backpack, BikeLight, BoltTShirt, FleeceJacket, Onesie, RedTShirt}
}

func UsernameInput() entity.Locator { return entity.ByID("user-name") }

func PasswordInput() entity.Locator { return entity.ByID("password") }

func LoginButton() entity.Locator { return entity.ByID("login-button") }

func ErrorBanner() entity.Locator { return entity.ByCSS("h3[data-test='error']") }

func InventoryContainer() entity.Locator { return entity.ByID("inventory_container") }

func CartLink() entity.Locator { return entity.ByCSS("a.shopping_cart_link") }

func CartHeaderTitle() entity.Locator {
	return entity.ByXPath("//div[@class='header_secondary_container']/span[text()=" + entity.XPathLiteral(CartHeader) + "]")
}

func itemRoot(name string) string {
	return "//div[text()=" + entity.XPathLiteral(name) + "]//ancestor::div[contains(@class,'inventory_item')]"
}

func AddButton(name string) entity.Locator {
	return entity.ByXPath(itemRoot(name) + "//button[text()='Add to cart']")
}

func RemoveButton(name string) entity.Locator {
	return entity.ByXPath(itemRoot(name) + "//button[text()='Remove']")
}

func ItemName(name string) entity.Locator {
	return entity.ByXPath(itemRoot(name) + "//div[@class='inventory_item_name']")
}

func CartItem(name string) entity.Locator {
	return entity.ByXPath("//div[@class='cart_item']//div[text()=" + entity.XPathLiteral(name) + "]")
}
