package sealevel

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/solwasm/tokenrt/pkg/accounts"
	"github.com/solwasm/tokenrt/pkg/base58"
)

const SysvarInstructionsAddrStr = "Sysvar1nstructions1111111111111111111111111"

var SysvarInstructionsAddr = base58.MustDecodeFromString(SysvarInstructionsAddrStr)

var instructionSysvarAcctMetaIsSigner = byte(0b00000001)
var instructionSysvarAcctMetaIsWritable = byte(0b00000010)

func instructionsMarshaledSize(instructions []Instruction) uint64 {
	var marshaledSize uint64

	marshaledSize += 2                             // num_instructions
	marshaledSize += uint64(2 * len(instructions)) // instruction offsets

	for _, instr := range instructions {
		marshaledSize += 2                                                          // num_accounts
		marshaledSize += uint64(len(instr.Accounts) * (1 + solana.PublicKeyLength)) // flags (i.e. is_signer, is_writeable) + pubkey len

		marshaledSize += uint64(32 + // program_id pubkey
			2 + // instr_data_len
			len(instr.Data))
	}

	marshaledSize += 2 // current_instr_id

	return marshaledSize
}

func marshalInstructions(instructions []Instruction) []byte {
	serializedLen := instructionsMarshaledSize(instructions)
	data := make([]byte, serializedLen)

	var offset uint64

	// num_instructions
	binary.LittleEndian.PutUint16(data[offset:], uint16(len(instructions)))
	offset += 2

	serializedInstrOffset := offset

	// instruction offsets
	offset += 2 * uint64(len(instructions))

	for _, instr := range instructions {
		binary.LittleEndian.PutUint16(data[serializedInstrOffset:], uint16(offset))
		serializedInstrOffset += 2

		binary.LittleEndian.PutUint16(data[offset:], uint16(len(instr.Accounts)))
		offset += 2

		for _, acctMeta := range instr.Accounts {
			// flags
			var acctMetaFlags byte
			if acctMeta.IsSigner {
				acctMetaFlags = acctMetaFlags | instructionSysvarAcctMetaIsSigner
			}
			if acctMeta.IsWritable {
				acctMetaFlags = acctMetaFlags | instructionSysvarAcctMetaIsWritable
			}
			data[offset] = acctMetaFlags
			offset += 1

			// pubkey
			copy(data[offset:], acctMeta.Pubkey[:])
			offset += solana.PublicKeyLength
		}

		// program_id pubkey
		copy(data[offset:], instr.ProgramId[:])
		offset += solana.PublicKeyLength

		// instr data len
		binary.LittleEndian.PutUint16(data[offset:], uint16(len(instr.Data)))
		offset += 2

		// instr data
		copy(data[offset:], instr.Data)
		offset += uint64(len(instr.Data))
	}

	binary.LittleEndian.PutUint16(data[offset:], 0)

	return data
}

func unmarshalInstructions(data []byte) ([]Instruction, uint16, error) {
	if len(data) < 4 {
		return nil, 0, ErrInvalidAccountData
	}

	numInstructions := binary.LittleEndian.Uint16(data)
	currentInstrIdx := binary.LittleEndian.Uint16(data[len(data)-2:])

	instructions := make([]Instruction, 0, numInstructions)

	for i := uint16(0); i < numInstructions; i++ {
		offsetPos := 2 + uint64(i)*2
		if offsetPos+2 > uint64(len(data)) {
			return nil, 0, ErrInvalidAccountData
		}
		offset := uint64(binary.LittleEndian.Uint16(data[offsetPos:]))

		if offset+2 > uint64(len(data)) {
			return nil, 0, ErrInvalidAccountData
		}
		numAccounts := binary.LittleEndian.Uint16(data[offset:])
		offset += 2

		var instr Instruction
		for j := uint16(0); j < numAccounts; j++ {
			if offset+1+solana.PublicKeyLength > uint64(len(data)) {
				return nil, 0, ErrInvalidAccountData
			}
			flags := data[offset]
			offset += 1

			var acctMeta AccountMeta
			acctMeta.IsSigner = flags&instructionSysvarAcctMetaIsSigner != 0
			acctMeta.IsWritable = flags&instructionSysvarAcctMetaIsWritable != 0
			acctMeta.Pubkey = solana.PublicKeyFromBytes(data[offset : offset+solana.PublicKeyLength])
			offset += solana.PublicKeyLength

			instr.Accounts = append(instr.Accounts, acctMeta)
		}

		if offset+solana.PublicKeyLength+2 > uint64(len(data)) {
			return nil, 0, ErrInvalidAccountData
		}
		instr.ProgramId = solana.PublicKeyFromBytes(data[offset : offset+solana.PublicKeyLength])
		offset += solana.PublicKeyLength

		dataLen := uint64(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2

		if offset+dataLen > uint64(len(data)) {
			return nil, 0, ErrInvalidAccountData
		}
		instr.Data = make([]byte, dataLen)
		copy(instr.Data, data[offset:offset+dataLen])

		instructions = append(instructions, instr)
	}

	return instructions, currentInstrIdx, nil
}

func WriteInstructionsSysvar(accts *accounts.Accounts, instructions []Instruction) error {
	serializedData := marshalInstructions(instructions)

	instructionsAcct := accounts.Account{}
	instructionsAcct.Key = SysvarInstructionsAddr
	instructionsAcct.Lamports = 1
	instructionsAcct.Data = serializedData
	instructionsAcct.RentEpoch = 0
	instructionsAcct.Executable = false
	instructionsAcct.Owner = SysvarOwnerAddr

	return (*accts).SetAccount(SysvarInstructionsAddr, &instructionsAcct)
}

// SetCurrentInstructionIndex updates the trailing current-instruction index
// of a previously written instructions sysvar account.
func SetCurrentInstructionIndex(accts *accounts.Accounts, idx uint16) error {
	instructionsAcct, err := (*accts).GetAccount(SysvarInstructionsAddr)
	if err != nil {
		return err
	}
	if len(instructionsAcct.Data) < 2 {
		return ErrInvalidAccountData
	}
	binary.LittleEndian.PutUint16(instructionsAcct.Data[len(instructionsAcct.Data)-2:], idx)
	return nil
}

// previousSiblingInstruction returns the instruction immediately preceding
// the currently executing top-level instruction, if any.
func previousSiblingInstruction(execCtx *ExecutionCtx) (*Instruction, error) {
	instructionsAcct, err := execCtx.Accounts.GetAccount(SysvarInstructionsAddr)
	if err != nil {
		return nil, ErrUnsupportedSysvar
	}

	instructions, currentIdx, err := unmarshalInstructions(instructionsAcct.Data)
	if err != nil {
		return nil, err
	}

	if currentIdx == 0 || uint64(currentIdx) > uint64(len(instructions)) {
		return nil, nil
	}
	return &instructions[currentIdx-1], nil
}
