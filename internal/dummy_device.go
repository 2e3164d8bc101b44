package internal

import (
	"context"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

var errDummyIO = errors.New("dummy io failure")

type mockConn struct {
	ctx          context.Context
	addr         string
	disconnected chan struct{}
}

func (c *mockConn) Context() context.Context          { return c.ctx }
func (c *mockConn) SetContext(ctx context.Context)    { c.ctx = ctx }
func (c *mockConn) LocalAddr() ble.Addr               { return ble.NewAddr("00:00:00:00:00:00") }
func (c *mockConn) RemoteAddr() ble.Addr              { return ble.NewAddr(c.addr) }
func (c *mockConn) RxMTU() int                        { return ble.DefaultMTU }
func (c *mockConn) SetRxMTU(mtu int)                  {}
func (c *mockConn) TxMTU() int                        { return ble.DefaultMTU }
func (c *mockConn) SetTxMTU(mtu int)                  {}
func (c *mockConn) Disconnected() <-chan struct{}     { return c.disconnected }
func (c *mockConn) Read(p []byte) (n int, err error)  { return 0, nil }
func (c *mockConn) Write(p []byte) (n int, err error) { return len(p), nil }
func (c *mockConn) Close() error                      { return nil }
