package domain

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// PaymentOutput is a single required destination of a payment transaction.
type PaymentOutput struct {
	Address string
	Amount  uint64
}

// CreatorOutput is the aggregated payout owed to one creator, along with the
// line items it covers so that creators inspecting their own payout can see
// which items it corresponds to.
type CreatorOutput struct {
	Address   string
	Amount    uint64
	ItemCount int
	ItemIDs   []int64
}

// PaymentIntent is the canonical description of every output a valid payment
// transaction must contain. It is ephemeral: derived fresh from the persisted
// composition line items each time it is needed and never stored as a source
// of truth, so that verification cannot be spoofed by tampering with a cached
// value.
type PaymentIntent struct {
	CompositionID   int64
	PlatformOutput  PaymentOutput
	CreatorOutputs  []CreatorOutput
	Memo            string
	TotalRequired   uint64
	EstimatedFee    uint64
	CommitmentHex   string
	ProtocolVersion int
}

// NewPaymentIntent aggregates the given line items into one output per
// creator payout address and returns the resulting intent. Grouping is
// case-insensitive on the address, contributing item ids are sorted ascending
// and the groups themselves are sorted by lowercased address ascending, which
// is what makes the commitment order-stable.
func NewPaymentIntent(
	compositionID int64,
	platformAddress string, platformFee uint64,
	items []CompositionItem,
	estimatedFee uint64,
) (*PaymentIntent, error) {
	if len(items) <= 0 {
		return nil, ErrCompositionIsEmpty
	}
	if !isValidAddress(platformAddress) {
		return nil, ErrInvalidAddress
	}
	if platformFee <= 0 {
		return nil, ErrAmountNotPositive
	}

	type group struct {
		address string
		amount  uint64
		itemIDs []int64
	}
	groups := make(map[string]*group)
	for _, item := range items {
		if !isValidAddress(item.CreatorPayoutAddress) {
			return nil, ErrInvalidAddress
		}
		if item.PriceNanoErg <= 0 {
			return nil, ErrAmountNotPositive
		}

		key := strings.ToLower(item.CreatorPayoutAddress)
		g, ok := groups[key]
		if !ok {
			g = &group{address: item.CreatorPayoutAddress}
			groups[key] = g
		}
		g.amount += item.PriceNanoErg
		g.itemIDs = append(g.itemIDs, item.SnippetVersionID)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := platformFee
	creatorOutputs := make([]CreatorOutput, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		sort.Slice(g.itemIDs, func(i, j int) bool {
			return g.itemIDs[i] < g.itemIDs[j]
		})
		creatorOutputs = append(creatorOutputs, CreatorOutput{
			Address:   g.address,
			Amount:    g.amount,
			ItemCount: len(g.itemIDs),
			ItemIDs:   g.itemIDs,
		})
		total += g.amount
	}

	intent := &PaymentIntent{
		CompositionID:   compositionID,
		PlatformOutput:  PaymentOutput{Address: platformAddress, Amount: platformFee},
		CreatorOutputs:  creatorOutputs,
		Memo:            strconv.FormatInt(compositionID, 10),
		TotalRequired:   total,
		EstimatedFee:    estimatedFee,
		ProtocolVersion: ProtocolVersion,
	}
	intent.CommitmentHex = intent.Commitment()
	return intent, nil
}

// Validate checks the intent against the protocol invariants: valid platform
// output, at least one creator output with valid address and positive amount,
// no duplicate creator addresses, and the declared total matching exactly the
// platform fee plus the summed creator amounts. Every stage consuming an
// intent runs this check and treats a violation as fatal.
func (i *PaymentIntent) Validate() error {
	if !isValidAddress(i.PlatformOutput.Address) {
		return ErrInvalidAddress
	}
	if i.PlatformOutput.Amount <= 0 {
		return ErrAmountNotPositive
	}
	if len(i.CreatorOutputs) <= 0 {
		return ErrCompositionIsEmpty
	}

	total := i.PlatformOutput.Amount
	seen := make(map[string]struct{}, len(i.CreatorOutputs))
	for _, out := range i.CreatorOutputs {
		if !isValidAddress(out.Address) {
			return ErrInvalidAddress
		}
		if out.Amount <= 0 {
			return ErrAmountNotPositive
		}
		key := strings.ToLower(out.Address)
		if _, ok := seen[key]; ok {
			return ErrDuplicateCreatorAddress
		}
		seen[key] = struct{}{}
		total += out.Amount
	}

	if total != i.TotalRequired {
		return ErrIntentInconsistent
	}
	if i.CommitmentHex != "" && i.CommitmentHex != i.Commitment() {
		return ErrIntentInconsistent
	}
	return nil
}

// CanonicalString serializes the intent into the deterministic string the
// commitment is computed over:
//
//	v1|<compositionId>|<platformAddr>:<platformAmount>|<addr>:<amount>:<id,id,...>|...
//
// Creator entries are sorted by lowercased address ascending and item ids
// ascending regardless of the in-memory ordering, so reordering the outputs
// of an intent never changes its canonical form. The delimiters cannot appear
// unescaped in the fields since addresses are base58 strings and every other
// field is a decimal integer.
func (i *PaymentIntent) CanonicalString() string {
	outs := make([]CreatorOutput, len(i.CreatorOutputs))
	copy(outs, i.CreatorOutputs)
	sort.Slice(outs, func(a, b int) bool {
		return strings.ToLower(outs[a].Address) < strings.ToLower(outs[b].Address)
	})

	sb := strings.Builder{}
	sb.WriteString("v")
	sb.WriteString(strconv.Itoa(i.ProtocolVersion))
	sb.WriteString("|")
	sb.WriteString(strconv.FormatInt(i.CompositionID, 10))
	sb.WriteString("|")
	sb.WriteString(i.PlatformOutput.Address)
	sb.WriteString(":")
	sb.WriteString(strconv.FormatUint(i.PlatformOutput.Amount, 10))

	for _, out := range outs {
		ids := make([]int64, len(out.ItemIDs))
		copy(ids, out.ItemIDs)
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

		sb.WriteString("|")
		sb.WriteString(out.Address)
		sb.WriteString(":")
		sb.WriteString(strconv.FormatUint(out.Amount, 10))
		sb.WriteString(":")
		for n, id := range ids {
			if n > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(strconv.FormatInt(id, 10))
		}
	}
	return sb.String()
}

// Commitment returns the hex-encoded Blake2b-256 digest of the canonical
// string. The hash function is a protocol constant: it is the same 256-bit
// scheme the ledger itself uses, so any third party given the ledger and the
// declared line items can independently recompute and check the binding.
func (i *PaymentIntent) Commitment() string {
	digest := blake2b.Sum256([]byte(i.CanonicalString()))
	return hex.EncodeToString(digest[:])
}

// CommitmentBytes returns the raw 32-byte commitment digest.
func (i *PaymentIntent) CommitmentBytes() []byte {
	digest := blake2b.Sum256([]byte(i.CanonicalString()))
	return digest[:]
}
