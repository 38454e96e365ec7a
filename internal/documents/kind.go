// Package documents implements the shared line-item and lifecycle engine used
// by sales orders, purchase orders, customer invoices and vendor bills. The
// four document kinds differ only in direction, numbering, status vocabulary
// and which catalog price seeds a line, so they share one implementation
// parameterized by KindConfig.
package documents

// Kind identifies a document collection.
type Kind string

const (
	KindSalesOrder      Kind = "sales_order"
	KindPurchaseOrder   Kind = "purchase_order"
	KindCustomerInvoice Kind = "customer_invoice"
	KindVendorBill      Kind = "vendor_bill"
)

// Direction determines the commercial side of a document and which catalog
// price seeds new lines.
type Direction string

const (
	DirectionSales    Direction = "sales"
	DirectionPurchase Direction = "purchase"
)

// KindConfig captures the per-kind policy knobs of the document engine.
type KindConfig struct {
	Kind         Kind
	Direction    Direction
	NumberPrefix string
	// Collection is the URL path segment the kind is mounted under.
	Collection string
	// TaxInLineTotal controls whether a line's total includes its tax amount.
	// Vendor bills historically carry tax-exclusive line totals; every other
	// kind is tax-inclusive. Changing this for bills would alter amounts on
	// documents already issued, so the asymmetry is kept.
	TaxInLineTotal bool
	// Payable kinds carry the independent payment_status axis.
	Payable bool

	transitions map[Status]map[Action]Status
	offered     map[Status][]Action
}

var kindConfigs = map[Kind]KindConfig{
	KindSalesOrder: {
		Kind:           KindSalesOrder,
		Direction:      DirectionSales,
		NumberPrefix:   "SO",
		Collection:     "sales-orders",
		TaxInLineTotal: true,
		transitions: map[Status]map[Action]Status{
			StatusDraft:     {ActionConfirm: StatusConfirmed, ActionCancel: StatusCancelled},
			StatusConfirmed: {ActionDeliver: StatusDelivered, ActionCancel: StatusCancelled},
		},
		offered: map[Status][]Action{
			StatusDraft:     {ActionConfirm, ActionEdit, ActionDelete},
			StatusConfirmed: {ActionDeliver, ActionCancel},
			StatusDelivered: {ActionGenerateDocument},
			StatusCancelled: {ActionGenerateDocument},
		},
	},
	KindPurchaseOrder: {
		Kind:           KindPurchaseOrder,
		Direction:      DirectionPurchase,
		NumberPrefix:   "PO",
		Collection:     "purchase-orders",
		TaxInLineTotal: true,
		transitions: map[Status]map[Action]Status{
			StatusDraft:     {ActionConfirm: StatusConfirmed, ActionCancel: StatusCancelled},
			StatusConfirmed: {ActionReceive: StatusReceived, ActionCancel: StatusCancelled},
		},
		offered: map[Status][]Action{
			StatusDraft:     {ActionConfirm, ActionEdit, ActionDelete},
			StatusConfirmed: {ActionReceive, ActionCancel},
			StatusReceived:  {ActionGenerateDocument},
			StatusCancelled: {ActionGenerateDocument},
		},
	},
	KindCustomerInvoice: {
		Kind:           KindCustomerInvoice,
		Direction:      DirectionSales,
		NumberPrefix:   "INV",
		Collection:     "customer-invoices",
		TaxInLineTotal: true,
		Payable:        true,
		transitions: map[Status]map[Action]Status{
			StatusDraft:  {ActionPost: StatusPosted, ActionCancel: StatusCancelled},
			StatusPosted: {ActionCancel: StatusCancelled},
		},
		offered: map[Status][]Action{
			StatusDraft:     {ActionPost, ActionEdit, ActionDelete},
			StatusPosted:    {ActionSendEmail, ActionGenerateDocument, ActionRecordPayment},
			StatusCancelled: {ActionGenerateDocument},
		},
	},
	KindVendorBill: {
		Kind:         KindVendorBill,
		Direction:    DirectionPurchase,
		NumberPrefix: "BILL",
		Collection:   "vendor-bills",
		// See TaxInLineTotal doc above.
		TaxInLineTotal: false,
		Payable:        true,
		transitions: map[Status]map[Action]Status{
			StatusDraft:  {ActionPost: StatusPosted, ActionCancel: StatusCancelled},
			StatusPosted: {ActionCancel: StatusCancelled},
		},
		offered: map[Status][]Action{
			StatusDraft:     {ActionPost, ActionEdit, ActionDelete},
			StatusPosted:    {ActionGenerateDocument, ActionRecordPayment},
			StatusCancelled: {ActionGenerateDocument},
		},
	},
}

// ConfigFor returns the policy configuration for a kind. Unknown kinds return
// ok=false.
func ConfigFor(kind Kind) (KindConfig, bool) {
	cfg, ok := kindConfigs[kind]
	return cfg, ok
}

// Kinds lists every registered document kind.
func Kinds() []Kind {
	return []Kind{KindSalesOrder, KindPurchaseOrder, KindCustomerInvoice, KindVendorBill}
}

// KindByCollection resolves a URL collection segment back to its kind.
func KindByCollection(collection string) (KindConfig, bool) {
	for _, cfg := range kindConfigs {
		if cfg.Collection == collection {
			return cfg, true
		}
	}
	return KindConfig{}, false
}
