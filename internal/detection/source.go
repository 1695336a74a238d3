package detection

import (
	"context"
	"strings"
)

// Page is the text a source exposes for scanning.
type Page struct {
	Content string
	Title   string
}

// PageSource supplies page text for a URL. The monitor only depends on
// this, so a real event feed can replace the simulated one.
type PageSource interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// SimulatedSource serves canned store pages instead of fetching anything.
type SimulatedSource struct{}

func (SimulatedSource) Fetch(ctx context.Context, url string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	switch {
	case strings.Contains(url, "amazon"):
		return Page{
			Title: "Amazon.com: Online Shopping",
			Content: `
      <div>Save 20% with code AMAZON20 at checkout</div>
      <span>Use promo code FREESHIP for free shipping</span>
      <p>Get 15% off your first order with NEWUSER15</p>`,
		}, nil
	case strings.Contains(url, "walmart"):
		return Page{
			Title: "Walmart.com: Save Money. Live Better.",
			Content: `
      <div>Special offer: Use SAVE10 for 10% off</div>
      <span>Coupon code: WALMART25 - 25% off electronics</span>`,
		}, nil
	case strings.Contains(url, "target"):
		return Page{
			Title: "Target: Expect More. Pay Less.",
			Content: `
      <div>Exclusive deal with code TARGET15</div>
      <span>Free shipping with SHIPFREE</span>`,
		}, nil
	}
	return Page{
		Title: "Online Store",
		Content: `
      <div>Check out our latest deals and offers</div>
      <span>Sign up for our newsletter for exclusive discounts</span>`,
	}, nil
}
