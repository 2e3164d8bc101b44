package server

import (
	"context"
	"strings"
	"time"

	"github.com/go-ble/ble"
)

// BLEReadCharacteristic answers read requests from centrals
type BLEReadCharacteristic struct {
	Uuid       string
	HandleRead func(addr string) ([]byte, error)
}

// BLEWriteCharacteristic receives write requests from centrals
type BLEWriteCharacteristic struct {
	Uuid        string
	HandleWrite func(addr string, data []byte)
}

// BLENotifyCharacteristic pushes values to subscribed centrals. Next blocks until the next
// value is ready and returns an error once the subscription should end.
type BLENotifyCharacteristic struct {
	Uuid string
	Next func(ctx context.Context) ([]byte, error)
}

func getAddrFromReq(req ble.Request) string {
	return strings.ToUpper(req.Conn().RemoteAddr().String())
}

func every(interval time.Duration, fn func() []byte) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
			return fn(), nil
		}
	}
}

func generateReadHandler(server *BLEServer, uuid string, load func(string) ([]byte, error)) func(req ble.Request, rsp ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		addr := getAddrFromReq(req)
		data, err := load(addr)
		if err != nil {
			server.logger.Warn().Err(err).Str("uuid", uuid).Str("central", addr).Msg("Read failed")
			rsp.SetStatus(ble.ErrUnlikely)
			return
		}
		rsp.Write(data)
	}
}

func generateWriteHandler(server *BLEServer, uuid string, onWrite func(string, []byte)) func(req ble.Request, rsp ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		addr := getAddrFromReq(req)
		server.logger.Debug().Str("uuid", uuid).Str("central", addr).Hex("data", req.Data()).Msg("Write")
		onWrite(addr, append([]byte(nil), req.Data()...))
	}
}

func generateNotifyHandler(server *BLEServer, uuid string, next func(context.Context) ([]byte, error)) func(req ble.Request, n ble.Notifier) {
	return func(req ble.Request, n ble.Notifier) {
		addr := getAddrFromReq(req)
		server.logger.Info().Str("uuid", uuid).Str("central", addr).Msg("Subscribed")
		defer server.logger.Info().Str("uuid", uuid).Str("central", addr).Msg("Unsubscribed")
		for {
			data, err := next(n.Context())
			if err != nil {
				return
			}
			if _, err := n.Write(data); err != nil {
				server.logger.Debug().Err(err).Str("uuid", uuid).Msg("Notify failed")
				return
			}
		}
	}
}

func constructReadChar(server *BLEServer, char *BLEReadCharacteristic) *ble.Characteristic {
	c := ble.NewCharacteristic(ble.MustParse(char.Uuid))
	c.HandleRead(ble.ReadHandlerFunc(generateReadHandler(server, char.Uuid, char.HandleRead)))
	return c
}

func constructWriteChar(server *BLEServer, char *BLEWriteCharacteristic) *ble.Characteristic {
	c := ble.NewCharacteristic(ble.MustParse(char.Uuid))
	c.HandleWrite(ble.WriteHandlerFunc(generateWriteHandler(server, char.Uuid, char.HandleWrite)))
	return c
}

func constructNotifyChar(server *BLEServer, char *BLENotifyCharacteristic) *ble.Characteristic {
	c := ble.NewCharacteristic(ble.MustParse(char.Uuid))
	c.HandleNotify(ble.NotifyHandlerFunc(generateNotifyHandler(server, char.Uuid, char.Next)))
	return c
}
