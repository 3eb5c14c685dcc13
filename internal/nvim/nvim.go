// Package nvim tells a running Neovim to reload buffers after the target
// file was rewritten underneath it.
package nvim

import (
	"os"

	"github.com/neovim/go-client/nvim"
	"go.uber.org/zap"
)

// Address environment variables, in lookup order. NVIM is set inside
// :terminal buffers; NVIM_LISTEN_ADDRESS is the legacy name.
var addressEnv = []string{"NVIM", "NVIM_LISTEN_ADDRESS"}

// Client is the part of *nvim.Nvim the refresher needs.
type Client interface {
	Command(cmd string) error
	Close() error
}

// Refresher connects to an existing Neovim instance. It never starts one.
type Refresher struct {
	logger *zap.Logger
	getenv func(string) string
	dial   func(addr string) (Client, error)
}

// New creates a Refresher that reads the socket address from the
// environment.
func New(logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		logger: logger,
		getenv: os.Getenv,
		dial: func(addr string) (Client, error) {
			v, err := nvim.Dial(addr)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Address returns the socket of the surrounding Neovim, or "".
func (r *Refresher) Address() string {
	for _, key := range addressEnv {
		if addr := r.getenv(key); addr != "" {
			return addr
		}
	}
	return ""
}

// Refresh runs :checktime in the surrounding Neovim so buffers showing path
// pick up the new content. Every failure is logged and swallowed; the file on
// disk is already correct at this point.
func (r *Refresher) Refresh(path string) bool {
	addr := r.Address()
	if addr == "" {
		return false
	}

	log := r.logger.With(zap.String("addr", addr), zap.String("path", path))
	v, err := r.dial(addr)
	if err != nil {
		log.Debug("neovim not reachable", zap.Error(err))
		return false
	}
	defer v.Close()

	if err := v.Command("silent! checktime"); err != nil {
		log.Debug("checktime failed", zap.Error(err))
		return false
	}
	log.Debug("neovim buffers refreshed")
	return true
}
