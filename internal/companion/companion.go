// Package companion starts and stops the console's primary
// application, which owns the screen and the virtual joystick while
// translation runs. Both operations are fire-and-forget: there is
// nothing useful to do with a failure beyond logging it.
package companion

import (
	"log"
	"os/exec"
)

type Manager struct {
	cmd string
}

func New(cmd string) *Manager {
	return &Manager{cmd: cmd}
}

// Stop kills the companion so the remap UI can own the framebuffer.
// Fired twice back to back; the process occasionally respawns once.
func (m *Manager) Stop() {
	for i := 0; i < 2; i++ {
		if err := exec.Command("killall", "-9", m.cmd).Run(); err != nil {
			log.Printf("stop %s: %v", m.cmd, err)
		}
	}
}

// Start relaunches the companion in the background.
func (m *Manager) Start() {
	cmd := exec.Command(m.cmd)
	if err := cmd.Start(); err != nil {
		log.Printf("start %s: %v", m.cmd, err)
		return
	}
	go cmd.Wait()
}
