package swaglabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemLocators(t *testing.T) {
	add := AddButton(Backpack)
	remove := RemoveButton(Backpack)

	assert.NoError(t, add.Validate())
	assert.Equal(t,
		`//div[text()="Sauce Labs Backpack"]//ancestor::div[contains(@class,'inventory_item')]//button[text()='Add to cart']`,
		add.Value)
	assert.Contains(t, remove.Value, "//button[text()='Remove']")
	assert.NotEqual(t, add, remove)
	assert.NotEqual(t, AddButton(Backpack), AddButton(BikeLight))
}

func TestCartLocators(t *testing.T) {
	assert.Equal(t, `//div[@class='cart_item']//div[text()="Sauce Labs Onesie"]`, CartItem(Onesie).Value)
	assert.Equal(t, `//div[@class='header_secondary_container']/span[text()="Your Cart"]`, CartHeaderTitle().Value)
}

func TestCatalogueIsFresh(t *testing.T) {
	items := Catalogue()
	assert.Len(t, items, 6)
	items[0] = "mutated"
	assert.Equal(t, Backpack, Catalogue()[0])
}
