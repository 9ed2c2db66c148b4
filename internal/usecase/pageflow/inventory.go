package pageflow

import (
	"context"
	"strings"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/domain/swaglabs"
	"swagflow/internal/usecase/interaction"
)

type InventoryPage struct {
	page
}

func NewInventoryPage(browser output.BrowserPort, log output.LoggerPort, opts Options) *InventoryPage {
	return &InventoryPage{page: newPage(browser, log.WithField("page", "inventory"), opts)}
}

// IsAtInventoryPage checks the store title and the product list. The login
// page shares the title, so the title alone is not enough.
func (p *InventoryPage) IsAtInventoryPage(ctx context.Context) bool {
	return p.check(ctx, entity.TitleContains(swaglabs.Title)) &&
		p.check(ctx, entity.ElementPresent(swaglabs.InventoryContainer()))
}

func (p *InventoryPage) WaitForInventoryContainer(ctx context.Context) entity.Result {
	return p.waiter.Await(ctx, entity.ElementPresent(swaglabs.InventoryContainer()), p.opts.Deadline)
}

// AddItemToCart clicks the item's add button and waits for its remove button.
// On success the displayed product name is in flow.Result.Value.
func (p *InventoryPage) AddItemToCart(ctx context.Context, name string) (*entity.Flow, error) {
	flow, log := p.begin("add-to-cart", "item", name)

	if res := p.WaitForInventoryContainer(ctx); !res.OK() {
		return p.settle(flow, log, res, "inventory did not load")
	}

	displayed := name
	if res := p.executor.Perform(ctx, swaglabs.ItemName(name), entity.ReadText(), p.opts.ImplicitWait); res.OK() {
		displayed = strings.TrimSpace(res.Value)
	} else {
		log.Warn("could not read displayed item name", "result", res.Kind.String())
	}

	res := p.perform(ctx, swaglabs.AddButton(name), entity.Click(),
		interaction.WithPostCondition(entity.ElementPresent(swaglabs.RemoveButton(name))))
	p.DismissInterstitials(ctx)

	res.Value = displayed
	return p.settle(flow, log, res, "item was not added to the cart")
}

func (p *InventoryPage) RemoveItemFromCart(ctx context.Context, name string) (*entity.Flow, error) {
	flow, log := p.begin("remove-from-cart", "item", name)

	res := p.perform(ctx, swaglabs.RemoveButton(name), entity.Click(),
		interaction.WithPostCondition(entity.ElementPresent(swaglabs.AddButton(name))))
	p.DismissInterstitials(ctx)

	return p.settle(flow, log, res, "item was not removed from the cart")
}

func (p *InventoryPage) IsRemoveButtonVisible(ctx context.Context, name string) bool {
	return p.check(ctx, entity.ElementVisible(swaglabs.RemoveButton(name)))
}

func (p *InventoryPage) OpenCart(ctx context.Context) (*entity.Flow, error) {
	flow, log := p.begin("open-cart")

	res := p.perform(ctx, swaglabs.CartLink(), entity.Click(),
		interaction.WithPostCondition(entity.ElementPresent(swaglabs.CartHeaderTitle())))
	p.DismissInterstitials(ctx)

	return p.settle(flow, log, res, "cart page did not open")
}

func (p *InventoryPage) IsAtCartPage(ctx context.Context) bool {
	return p.check(ctx, entity.ElementPresent(swaglabs.CartHeaderTitle()))
}

func (p *InventoryPage) IsItemInCart(ctx context.Context, name string) bool {
	return p.check(ctx, entity.ElementPresent(swaglabs.CartItem(name)))
}
