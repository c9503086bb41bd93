// Command psxcdrepl is an interactive raw-terminal register console for
// a cdrom.Device: "poke <port> <value>", "peek <port>", "tick <n>", and
// "quit". Raw-mode handling is grounded on
// _examples/IntuitionAmiga-IntuitionEngine/terminal_host.go (term.MakeRaw/
// term.Restore, CR->LF and DEL->BS translation at the byte level).
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/go-psx/psxcd/cdrom"
)

type nopTick struct{}

func (nopTick) Synchronize()         {}
func (nopTick) SetDowncount(int32)   {}

type nopDma struct{}

func (nopDma) SetRequest(bool) {}

type loggingIrq struct{}

func (loggingIrq) Request() { fmt.Print("\r\n[irq]\r\n") }

type nopAudio struct{}

func (nopAudio) PushSample(int16, int16) {}

type silentXA struct{}

func (silentXA) DecodeXaSector(payload []byte, stereo bool, lastSamples *[2][2]int16) []int16 {
	return make([]int16, len(payload)/2)
}

func main() {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("psxcdrepl: failed to set raw mode: %v", err)
	}
	defer term.Restore(fd, oldState)

	device := cdrom.NewDevice(cdrom.RegionSCEA, nopTick{}, nopDma{}, loggingIrq{}, nopAudio{}, silentXA{})

	fmt.Print("psxcdrepl: poke <port> <value> | peek <port> | tick <n> | quit\r\n> ")

	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if n == 0 || err != nil {
			return
		}
		b := buf[0]
		if b == '\r' {
			b = '\n'
		}
		if b == 0x7F {
			b = 0x08
		}

		switch {
		case b == '\n':
			fmt.Print("\r\n")
			if !runLine(device, string(line)) {
				return
			}
			line = line[:0]
			fmt.Print("> ")
		case b == 0x08:
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Print("\b \b")
			}
		case b >= 0x20 && b < 0x7F:
			line = append(line, b)
			os.Stdout.Write([]byte{b})
		}
	}
}

// runLine parses and executes one REPL command. It returns false when
// the REPL should exit.
func runLine(device *cdrom.Device, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit", "exit":
		return false

	case "poke":
		if len(fields) != 3 {
			fmt.Print("usage: poke <port> <value>\r\n")
			return true
		}
		port, perr := strconv.ParseUint(fields[1], 0, 8)
		value, verr := strconv.ParseUint(fields[2], 0, 8)
		if perr != nil || verr != nil {
			fmt.Print("poke: bad port or value\r\n")
			return true
		}
		device.Store(uint8(port), uint8(value))

	case "peek":
		if len(fields) != 2 {
			fmt.Print("usage: peek <port>\r\n")
			return true
		}
		port, perr := strconv.ParseUint(fields[1], 0, 8)
		if perr != nil {
			fmt.Print("peek: bad port\r\n")
			return true
		}
		fmt.Printf("0x%02X\r\n", device.Load(uint8(port)))

	case "tick":
		if len(fields) != 2 {
			fmt.Print("usage: tick <n>\r\n")
			return true
		}
		n, nerr := strconv.ParseInt(fields[1], 0, 32)
		if nerr != nil {
			fmt.Print("tick: bad n\r\n")
			return true
		}
		device.Execute(int32(n))

	default:
		fmt.Printf("unknown command %q\r\n", fields[0])
	}
	return true
}
