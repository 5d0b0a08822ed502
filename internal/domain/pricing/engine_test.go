package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func storeRules() model.PricingRules {
	return model.PricingRules{
		FreeDeliveryThreshold: d("500"),
		DeliveryFee:           d("40"),
		TaxRate:               d("0.05"),
		Currency:              "INR",
	}
}

func singleItem(price string, qty int) []model.OrderItem {
	return []model.OrderItem{{ProductID: 1, Name: "Basmati rice", Price: d(price), Quantity: qty}}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: expected %s, got %s", field, want, got)
}

func TestComputeSummaryWithoutDiscounts(t *testing.T) {
	engine := NewEngine(storeRules())

	summary := engine.ComputeSummary(singleItem("600", 1), decimal.Zero, decimal.Zero)

	assertMoney(t, "600", summary.ItemsTotal, "itemsTotal")
	assertMoney(t, "0", summary.DeliveryFee, "deliveryFee")
	assertMoney(t, "30", summary.Tax, "tax")
	assertMoney(t, "630", summary.GrandTotal, "grandTotal")
}

func TestComputeSummaryWithCoupon(t *testing.T) {
	engine := NewEngine(storeRules())

	summary := engine.ComputeSummary(singleItem("600", 1), d("50"), decimal.Zero)

	assertMoney(t, "50", summary.CouponDiscount, "couponDiscount")
	assertMoney(t, "30", summary.Tax, "tax")
	assertMoney(t, "580", summary.GrandTotal, "grandTotal")
}

func TestComputeSummaryWalletCoversEverything(t *testing.T) {
	engine := NewEngine(storeRules())

	summary := engine.ComputeSummary(singleItem("600", 1), d("50"), d("1000"))

	assertMoney(t, "580", summary.WalletUsed, "walletUsed")
	assertMoney(t, "0", summary.GrandTotal, "grandTotal")
}

func TestComputeSummaryPartialWallet(t *testing.T) {
	engine := NewEngine(storeRules())

	summary := engine.ComputeSummary(singleItem("600", 1), decimal.Zero, d("100.50"))

	assertMoney(t, "100.50", summary.WalletUsed, "walletUsed")
	assertMoney(t, "529.50", summary.GrandTotal, "grandTotal")
}

func TestComputeSummaryChargesDeliveryBelowThreshold(t *testing.T) {
	engine := NewEngine(storeRules())

	cases := []struct {
		name  string
		price string
		fee   string
		grand string
	}{
		{"below threshold", "200", "40", "250"},
		{"exactly threshold", "500", "40", "565"},
		{"above threshold", "500.01", "0", "525.01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := engine.ComputeSummary(singleItem(tc.price, 1), decimal.Zero, decimal.Zero)
			assertMoney(t, tc.fee, summary.DeliveryFee, "deliveryFee")
			assertMoney(t, tc.grand, summary.GrandTotal, "grandTotal")
		})
	}
}

func TestComputeSummaryInvariant(t *testing.T) {
	engine := NewEngine(storeRules())
	items := []model.OrderItem{
		{ProductID: 1, Price: d("99.99"), SalePrice: d("89.99"), Quantity: 3},
		{ProductID: 2, Price: d("12.35"), Quantity: 7},
	}

	for _, wallet := range []string{"0", "10", "250.37", "100000"} {
		for _, coupon := range []string{"0", "15", "1000"} {
			s := engine.ComputeSummary(items, d(coupon), d(wallet))

			require.False(t, s.GrandTotal.IsNegative(), "grand total must not be negative")
			require.True(t, s.WalletUsed.LessThanOrEqual(d(wallet)), "wallet used must not exceed balance")

			expected := s.ItemsTotal.Add(s.DeliveryFee).Add(s.Tax).Sub(s.Discount).Sub(s.CouponDiscount).Sub(s.WalletUsed)
			require.Truef(t, expected.Equal(s.GrandTotal), "grand total %s != %s", s.GrandTotal, expected)
		}
	}
}

func TestComputeSummaryIgnoresNegativeInputs(t *testing.T) {
	engine := NewEngine(storeRules())

	summary := engine.ComputeSummary(singleItem("600", 1), d("-5"), d("-10"))

	assertMoney(t, "0", summary.CouponDiscount, "couponDiscount")
	assertMoney(t, "0", summary.WalletUsed, "walletUsed")
	assertMoney(t, "630", summary.GrandTotal, "grandTotal")
}

func TestSaleDiscountIsReported(t *testing.T) {
	engine := NewEngine(storeRules())
	items := []model.OrderItem{{ProductID: 1, Price: d("100"), SalePrice: d("90"), Quantity: 2}}

	summary := engine.ComputeSummary(items, decimal.Zero, decimal.Zero)

	assertMoney(t, "200", summary.ItemsTotal, "itemsTotal")
	assertMoney(t, "20", summary.Discount, "discount")
	assertMoney(t, "10", summary.Tax, "tax")
	assertMoney(t, "230", summary.GrandTotal, "grandTotal")
}
