package board

import (
	"bufio"
	"fmt"
	"os"

	"github.com/creack/pty"
	"github.com/pkg/term"
	"golang.org/x/sys/unix"

	"github.com/openrk/kernel/internal/klog"
	"github.com/openrk/kernel/pkg/rk"
)

// Console is a simulated UART: a pty pair stands in for the serial port
// the teacher's serial_port.go opens with pkg/term, and a reader
// goroutine (the ISR-equivalent "line arrived" event source) posts each
// line into the console task's private mailbox, exactly the pattern
// C12 is built for.
type Console struct {
	k        *rk.Kernel
	task     *rk.TCB
	log      *klog.Logger
	master   *os.File
	slaveFd  *term.Term
	slavePty *os.File
}

// OpenConsole allocates a pty pair, puts the slave side in raw mode via
// pkg/term the way serial_port_open does, and starts the line reader.
func OpenConsole(k *rk.Kernel, task *rk.TCB) (*Console, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("board: open pty: %w", err)
	}

	c := &Console{
		k:        k,
		task:     task,
		log:      klog.Default().With("component", "console"),
		master:   master,
		slavePty: slave,
	}

	if fd, err := term.Open(slave.Name(), term.RawMode); err == nil {
		c.slaveFd = fd
	} else {
		c.log.Warn("could not set raw mode on console pty", "err", err)
	}

	go c.readLoop()

	return c, nil
}

// readLoop is the "interrupt source" for the console: every complete
// line read off the master side is posted into the task's mailbox.
func (c *Console) readLoop() {
	scanner := bufio.NewScanner(c.master)

	for scanner.Scan() {
		line := scanner.Text()

		if err := c.k.TaskQPost(c.task, line, uint32(len(line)), rk.PostFIFO); err != nil {
			c.log.Warn("console post dropped", "err", err)
		}
	}
}

// WriteString echoes a response out the master side, as if transmitted
// back down the serial line.
func (c *Console) WriteString(s string) error {
	_, err := c.master.Write([]byte(s))
	return err
}

// SetRTS raises or drops the RTS modem line on the master side, the
// same TIOCM ioctl dance as RTS_ON/RTS_OFF, repurposed here as the
// console's PTT-equivalent out-of-band signal line.
func (c *Console) SetRTS(on bool) error {
	fd := int(c.master.Fd())

	stuff, err := unix.IoctlGetInt(fd, unix.TIOCMGET)
	if err != nil {
		return fmt.Errorf("board: get modem lines: %w", err)
	}

	if on {
		stuff |= unix.TIOCM_RTS
	} else {
		stuff &^= unix.TIOCM_RTS
	}

	return unix.IoctlSetInt(fd, unix.TIOCMSET, stuff)
}

// Close tears down both ends of the pty.
func (c *Console) Close() error {
	if c.slaveFd != nil {
		c.slaveFd.Close()
	}

	_ = c.slavePty.Close()

	return c.master.Close()
}
