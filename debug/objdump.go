package main

import (
	"asm14"
	"asm14/assembler"
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
)

type dumpedInstruction struct {
	Address  asm14.MachineAddress
	Mnemonic string
	Operands []string
}

type dump struct {
	Code []dumpedInstruction
	Data []string
	Bad  []string
}

func operandText(arch asm14.Arch, mode asm14.AddrMode, w asm14.MachineWord, source bool) string {
	switch mode {
	case asm14.ModeImmediate:
		return fmt.Sprintf("#%d", arch.DecodeImmediate(w))
	case asm14.ModeDirect:
		addr, link := arch.DecodeAddress(w)
		return fmt.Sprintf("%04d/%v", addr, link)
	case asm14.ModeIndexed:
		reg, addr, link := arch.DecodeIndexed(w)
		return fmt.Sprintf("%04d[%v]/%v", addr, reg, link)
	}
	src, dst := asm14.DecodeRegisters(w)
	if source {
		return src.String()
	}
	return dst.String()
}

// disassemble walks the code image the same way the machine fetches it:
// a control word, then as many operand words as its modes call for.
func disassemble(arch asm14.Arch, obj *assembler.ObjectFile) dump {
	var out dump
	words := obj.Code.Words
	for pc := 0; pc < len(words); {
		addr := obj.Code.Base + asm14.MachineAddress(pc)
		dec, err := arch.Decode(words[pc])
		if err != nil || pc+dec.Length() > len(words) {
			out.Bad = append(out.Bad, fmt.Sprintf("%04d %s: %v", addr, assembler.RenderWord(arch, words[pc]), err))
			pc++
			continue
		}
		inst := dumpedInstruction{Address: addr, Mnemonic: dec.Instruction.Name}
		extra := words[pc+1 : pc+dec.Length()]
		switch dec.Instruction.NumArgs {
		case 1:
			inst.Operands = []string{operandText(arch, dec.Dst, extra[0], false)}
		case 2:
			dstWord := extra[len(extra)-1]
			inst.Operands = []string{
				operandText(arch, dec.Src, extra[0], true),
				operandText(arch, dec.Dst, dstWord, false),
			}
		}
		out.Code = append(out.Code, inst)
		pc += dec.Length()
	}
	for i, w := range obj.Data.Words {
		out.Data = append(out.Data, fmt.Sprintf("%04d %d", obj.Data.Base+asm14.MachineAddress(i), arch.DecodeData(w)))
	}
	return out
}

var (
	wordBits  uint
	codeStart uint32
)

var rootCmd = &cobra.Command{
	Use:          "objdump [flags] [file.ob]",
	Short:        "Disassemble an asm14 object file (stdin when no file is given)",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		arch := asm14.DefaultArch()
		arch.WordBits = wordBits
		arch.CodeStart = asm14.MachineAddress(codeStart)
		if err := arch.Validate(); err != nil {
			return err
		}
		r := cmd.InOrStdin()
		if len(args) == 1 {
			inputFile, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			r = bytes.NewReader(inputFile)
		}
		obj, err := assembler.ReadObject(r, arch)
		if err != nil {
			return err
		}
		glog.V(1).Infof("read %d code and %d data words", obj.Code.Len(), obj.Data.Len())
		pp.Fprintln(cmd.OutOrStdout(), disassemble(arch, obj))
		return nil
	},
}

func init() {
	def := asm14.DefaultArch()
	rootCmd.Flags().UintVar(&wordBits, "word-bits", def.WordBits, "machine word width the object was assembled for")
	rootCmd.Flags().Uint32Var(&codeStart, "code-start", def.CodeStart, "address of the first instruction")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Errorf("objdump: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}
