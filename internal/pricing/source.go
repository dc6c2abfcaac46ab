package pricing

// Source identifies where a displayed price came from. Downstream consumers
// use it to distinguish genuine marketplace prices from synthesized guesses.
type Source string

const (
	// SourcePurchaseHD is a real HD purchase price from the movie catalog.
	SourcePurchaseHD Source = "purchase_hd"
	// SourcePurchase is a real standard purchase (or book list) price.
	SourcePurchase Source = "purchase"
	// SourceCollection is a price attached to a collection/bundle rather than
	// the standalone title.
	SourceCollection Source = "collection"
	// SourceRental is a real rental price.
	SourceRental Source = "rental"
	// SourceEstimated marks a synthesized price. It exists only so the UI has
	// something non-null to display.
	SourceEstimated Source = "estimated"
	// SourceManualEntry marks a price typed in by the user.
	SourceManualEntry Source = "manual_entry"
	// SourceSample marks placeholder results returned when the book catalog
	// is unreachable.
	SourceSample Source = "sample"
	// SourceNoUpdate marks a refresh attempt that found no new price.
	SourceNoUpdate Source = "no_update"
)

// IsReal reports whether the source represents an actual marketplace price
// rather than a synthesized or placeholder one.
func (s Source) IsReal() bool {
	switch s {
	case SourcePurchaseHD, SourcePurchase, SourceCollection, SourceRental:
		return true
	}
	return false
}
