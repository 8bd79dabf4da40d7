package sealevel

import (
	"bytes"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/solwasm/tokenrt/pkg/safemath"
)

// fixed extension payload sizes
const (
	TransferFeeLen           = 18
	TransferFeeConfigLen     = 108
	TransferFeeAmountLen     = 8
	MintCloseAuthorityLen    = 32
	DefaultAccountStateLen   = 1
	MemoTransferLen          = 1
	InterestBearingConfigLen = 52
)

const MaxTransferFeeBasisPoints = 10000

// An optional-non-zero pubkey encodes None as the all-zero key.

func optionalNonZeroPubkey(key *solana.PublicKey) solana.PublicKey {
	if key == nil {
		return solana.PublicKey{}
	}
	return *key
}

func pubkeyFromOptionalNonZero(key solana.PublicKey) *solana.PublicKey {
	if key.IsZero() {
		return nil
	}
	k := key
	return &k
}

// TransferFee is one epoch-scheduled fee entry.
type TransferFee struct {
	Epoch                  uint64
	MaximumFee             uint64
	TransferFeeBasisPoints uint16
}

// TransferFeeConfig is the mint extension configuring transfer fees.
type TransferFeeConfig struct {
	TransferFeeConfigAuthority solana.PublicKey
	WithdrawWithheldAuthority  solana.PublicKey
	WithheldAmount             uint64
	OlderTransferFee           TransferFee
	NewerTransferFee           TransferFee
}

// TransferFeeAmount is the account extension accumulating withheld fees.
type TransferFeeAmount struct {
	WithheldAmount uint64
}

type MintCloseAuthority struct {
	CloseAuthority solana.PublicKey
}

type DefaultAccountState struct {
	State byte
}

type MemoTransfer struct {
	RequireIncomingTransferMemos bool
}

type InterestBearingConfig struct {
	RateAuthority           solana.PublicKey
	InitializationTimestamp int64
	PreUpdateAverageRate    int16
	LastUpdateTimestamp     int64
	CurrentRate             int16
}

func (fee *TransferFee) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	fee.Epoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	fee.MaximumFee, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	fee.TransferFeeBasisPoints, err = decoder.ReadUint16(bin.LE)
	return err
}

func (fee *TransferFee) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint64(fee.Epoch, bin.LE)
	if err != nil {
		return err
	}

	err = encoder.WriteUint64(fee.MaximumFee, bin.LE)
	if err != nil {
		return err
	}

	return encoder.WriteUint16(fee.TransferFeeBasisPoints, bin.LE)
}

// CalculateFee computes the fee for an amount, capped at MaximumFee.
func (fee *TransferFee) CalculateFee(amount uint64) (uint64, error) {
	basisPoints := uint64(fee.TransferFeeBasisPoints)
	if basisPoints == 0 || amount == 0 {
		return 0, nil
	}

	rawFee, err := safemath.CeilDivU64W(amount, basisPoints, MaxTransferFeeBasisPoints)
	if err != nil {
		return 0, TokenErrOverflow
	}

	if rawFee > fee.MaximumFee {
		return fee.MaximumFee, nil
	}
	return rawFee, nil
}

func (config *TransferFeeConfig) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	configAuthority, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	config.TransferFeeConfigAuthority = solana.PublicKeyFromBytes(configAuthority)

	withdrawAuthority, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	config.WithdrawWithheldAuthority = solana.PublicKeyFromBytes(withdrawAuthority)

	config.WithheldAmount, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	err = config.OlderTransferFee.UnmarshalWithDecoder(decoder)
	if err != nil {
		return err
	}

	return config.NewerTransferFee.UnmarshalWithDecoder(decoder)
}

func (config *TransferFeeConfig) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteBytes(config.TransferFeeConfigAuthority[:], false)
	if err != nil {
		return err
	}

	err = encoder.WriteBytes(config.WithdrawWithheldAuthority[:], false)
	if err != nil {
		return err
	}

	err = encoder.WriteUint64(config.WithheldAmount, bin.LE)
	if err != nil {
		return err
	}

	err = config.OlderTransferFee.MarshalWithEncoder(encoder)
	if err != nil {
		return err
	}

	return config.NewerTransferFee.MarshalWithEncoder(encoder)
}

// GetEpochFee selects the schedule entry effective at the given epoch.
func (config *TransferFeeConfig) GetEpochFee(epoch uint64) *TransferFee {
	if epoch >= config.NewerTransferFee.Epoch {
		return &config.NewerTransferFee
	}
	return &config.OlderTransferFee
}

func (config *TransferFeeConfig) CalculateEpochFee(epoch uint64, amount uint64) (uint64, error) {
	return config.GetEpochFee(epoch).CalculateFee(amount)
}

func (amount *TransferFeeAmount) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	amount.WithheldAmount, err = decoder.ReadUint64(bin.LE)
	return err
}

func (amount *TransferFeeAmount) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint64(amount.WithheldAmount, bin.LE)
}

// Closable rejects closing an account still holding withheld fees.
func (amount *TransferFeeAmount) Closable() error {
	if amount.WithheldAmount != 0 {
		return TokenErrAccountHasWithheldTransferFees
	}
	return nil
}

func (closeAuth *MintCloseAuthority) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	authority, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	closeAuth.CloseAuthority = solana.PublicKeyFromBytes(authority)
	return nil
}

func (closeAuth *MintCloseAuthority) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteBytes(closeAuth.CloseAuthority[:], false)
}

func (state *DefaultAccountState) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	state.State, err = decoder.ReadByte()
	return err
}

func (state *DefaultAccountState) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteByte(state.State)
}

func (memo *MemoTransfer) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	b, err := decoder.ReadByte()
	if err != nil {
		return err
	}
	memo.RequireIncomingTransferMemos = b != 0
	return nil
}

func (memo *MemoTransfer) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteBool(memo.RequireIncomingTransferMemos)
}

func (config *InterestBearingConfig) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	rateAuthority, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	config.RateAuthority = solana.PublicKeyFromBytes(rateAuthority)

	config.InitializationTimestamp, err = decoder.ReadInt64(bin.LE)
	if err != nil {
		return err
	}

	config.PreUpdateAverageRate, err = decoder.ReadInt16(bin.LE)
	if err != nil {
		return err
	}

	config.LastUpdateTimestamp, err = decoder.ReadInt64(bin.LE)
	if err != nil {
		return err
	}

	config.CurrentRate, err = decoder.ReadInt16(bin.LE)
	return err
}

func (config *InterestBearingConfig) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteBytes(config.RateAuthority[:], false)
	if err != nil {
		return err
	}

	err = encoder.WriteInt64(config.InitializationTimestamp, bin.LE)
	if err != nil {
		return err
	}

	err = encoder.WriteInt16(config.PreUpdateAverageRate, bin.LE)
	if err != nil {
		return err
	}

	err = encoder.WriteInt64(config.LastUpdateTimestamp, bin.LE)
	if err != nil {
		return err
	}

	return encoder.WriteInt16(config.CurrentRate, bin.LE)
}

type extensionUnmarshaler interface {
	UnmarshalWithDecoder(decoder *bin.Decoder) error
}

type extensionMarshaler interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

// unmarshalExtension decodes a typed extension out of its payload slice.
func unmarshalExtension(payload []byte, v extensionUnmarshaler) error {
	decoder := bin.NewBinDecoder(payload)
	err := v.UnmarshalWithDecoder(decoder)
	if err != nil {
		return ErrInvalidAccountData
	}
	return nil
}

// packExtension serializes a typed extension back into its payload slice,
// which must be exactly the payload's fixed size.
func packExtension(payload []byte, v extensionMarshaler) error {
	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)
	err := v.MarshalWithEncoder(encoder)
	if err != nil {
		return err
	}
	if buf.Len() != len(payload) {
		return ErrInvalidAccountData
	}
	copy(payload, buf.Bytes())
	return nil
}

const secondsPerYear = 60 * 60 * 24 * 365.24

const interestBasisPoints = 10000

func compoundedInterest(rate int16, timespan int64) float64 {
	exponent := float64(rate) / (secondsPerYear * interestBasisPoints) * float64(timespan)
	return math.Exp(exponent)
}

// TimeWeightedAverageRate folds the current rate into the running average at
// a rate update.
func (config *InterestBearingConfig) TimeWeightedAverageRate(currentTimestamp int64) (int16, error) {
	initialization := config.InitializationTimestamp
	lastUpdate := config.LastUpdateTimestamp

	if lastUpdate < initialization || currentTimestamp < lastUpdate {
		return 0, TokenErrOverflow
	}

	totalSpan := currentTimestamp - initialization
	if totalSpan == 0 {
		return config.CurrentRate, nil
	}

	weighted := int64(config.PreUpdateAverageRate)*(lastUpdate-initialization) +
		int64(config.CurrentRate)*(currentTimestamp-lastUpdate)

	return int16(weighted / totalSpan), nil
}

// totalScale is the display multiplier combining accrued interest over the
// pre- and post-update windows with the decimal shift.
func (config *InterestBearingConfig) totalScale(decimals byte, unixTimestamp int64) (float64, error) {
	preUpdateTimespan := config.LastUpdateTimestamp - config.InitializationTimestamp
	postUpdateTimespan := unixTimestamp - config.LastUpdateTimestamp
	if preUpdateTimespan < 0 || postUpdateTimespan < 0 {
		return 0, TokenErrOverflow
	}

	preUpdateExp := compoundedInterest(config.PreUpdateAverageRate, preUpdateTimespan)
	postUpdateExp := compoundedInterest(config.CurrentRate, postUpdateTimespan)

	return preUpdateExp * postUpdateExp / math.Pow10(int(decimals)), nil
}

// AmountToUiAmount renders a raw amount with accrued interest applied.
func (config *InterestBearingConfig) AmountToUiAmount(amount uint64, decimals byte, unixTimestamp int64) (string, error) {
	scale, err := config.totalScale(decimals, unixTimestamp)
	if err != nil {
		return "", err
	}
	scaled := float64(amount) * scale
	return formatF64(scaled), nil
}

// TryUiAmountIntoAmount is the inverse parse of AmountToUiAmount.
func (config *InterestBearingConfig) TryUiAmountIntoAmount(uiAmount string, decimals byte, unixTimestamp int64) (uint64, error) {
	scale, err := config.totalScale(decimals, unixTimestamp)
	if err != nil {
		return 0, err
	}

	parsed, err := parseF64(uiAmount)
	if err != nil {
		return 0, ErrInvalidArgument
	}

	amount := math.Round(parsed / scale)
	if amount < 0 || amount > float64(math.MaxUint64) || math.IsNaN(amount) {
		return 0, ErrInvalidArgument
	}
	return uint64(amount), nil
}
