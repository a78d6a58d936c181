// Package rtc reads wall clock time from the battery-backed CMOS real-time
// clock.
package rtc

import (
	"io"
	"kfs/device"
	"kfs/kernel"
	"kfs/kernel/cpu"
	"kfs/kernel/kfmt"
)

const (
	cmosIndexPort = 0x70
	cmosDataPort  = 0x71

	// nmiDisable is or-ed into every register index so that reading the
	// clock does not re-enable non-maskable interrupts.
	nmiDisable = 0x80

	regSeconds = 0x00
	regMinutes = 0x02
	regHours   = 0x04
	regDay     = 0x07
	regMonth   = 0x08
	regYear    = 0x09
	regStatusA = 0x0a
	regStatusB = 0x0b

	statusAUpdating = 1 << 7
	statusB24Hour   = 1 << 1
	statusBBinary   = 1 << 2
	hourPM          = 0x80

	// The CMOS year register only holds two digits.
	century = 2000

	// maxReadAttempts bounds the number of times a snapshot is re-read
	// when an update races with it.
	maxReadAttempts = 8
)

var (
	portReadByteFn  = cpu.PortReadByte
	portWriteByteFn = cpu.PortWriteByte
)

// Time is a wall clock time of day.
type Time struct {
	Hour, Minute, Second uint8
}

// Date is a calendar date.
type Date struct {
	Year       uint16
	Month, Day uint8
}

// Clock is implemented by devices that report the current date and time.
type Clock interface {
	ReadTime() Time
	ReadDate() Date
}

type snapshot [6]uint8

// CMOS reads the MC146818 compatible clock through the CMOS index/data
// ports.
type CMOS struct{}

// ReadTime returns the current time of day in 24-hour format.
func (c *CMOS) ReadTime() Time {
	s, status := c.read()
	return Time{
		Hour:   decodeHour(s[2], status),
		Minute: decodeValue(s[1], status),
		Second: decodeValue(s[0], status),
	}
}

// ReadDate returns the current date.
func (c *CMOS) ReadDate() Date {
	s, status := c.read()
	return Date{
		Year:  century + uint16(decodeValue(s[5], status)),
		Month: decodeValue(s[4], status),
		Day:   decodeValue(s[3], status),
	}
}

// read returns a consistent snapshot of the clock registers together with
// status register B. The registers are read until two consecutive snapshots
// match so that an update in progress is never observed half-way.
func (c *CMOS) read() (snapshot, uint8) {
	last := readSnapshot()
	for attempt := 0; attempt < maxReadAttempts; attempt++ {
		cur := readSnapshot()
		if cur == last {
			break
		}
		last = cur
	}

	return last, readRegister(regStatusB)
}

func readSnapshot() snapshot {
	for attempt := 0; attempt < maxReadAttempts; attempt++ {
		if readRegister(regStatusA)&statusAUpdating == 0 {
			break
		}
	}

	return snapshot{
		readRegister(regSeconds),
		readRegister(regMinutes),
		readRegister(regHours),
		readRegister(regDay),
		readRegister(regMonth),
		readRegister(regYear),
	}
}

func readRegister(reg uint8) uint8 {
	portWriteByteFn(cmosIndexPort, nmiDisable|reg)
	return portReadByteFn(cmosDataPort)
}

func decodeValue(v, status uint8) uint8 {
	if status&statusBBinary != 0 {
		return v
	}
	return (v>>4)*10 + v&0x0f
}

func decodeHour(v, status uint8) uint8 {
	pm := v&hourPM != 0
	hour := decodeValue(v&^hourPM, status)

	if status&statusB24Hour != 0 {
		return hour
	}

	switch {
	case pm && hour < 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return hour
}

// DriverName returns the name of this driver.
func (c *CMOS) DriverName() string {
	return "cmos_rtc"
}

// DriverVersion returns the version of this driver.
func (c *CMOS) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit reports the current date and time.
func (c *CMOS) DriverInit(w io.Writer) *kernel.Error {
	Format(w, c.ReadDate(), c.ReadTime())
	kfmt.Fprintf(w, "\n")
	return nil
}

// Format writes d and t to w as YYYY-MM-DD HH:MM:SS.
func Format(w io.Writer, d Date, t Time) {
	kfmt.Fprintf(w, "%d-%s%d-%s%d %s%d:%s%d:%s%d",
		d.Year, pad(d.Month), d.Month, pad(d.Day), d.Day,
		pad(t.Hour), t.Hour, pad(t.Minute), t.Minute, pad(t.Second), t.Second,
	)
}

// pad returns the leading zero needed to print v with two digits.
func pad(v uint8) string {
	if v < 10 {
		return "0"
	}
	return ""
}

func probeForCMOS() device.Driver {
	return &CMOS{}
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderNormal,
		Probe: probeForCMOS,
	})
}
