package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/centrifugal/centrifuge"
	"github.com/user/stickers-back/internal/auth"
	"github.com/user/stickers-back/internal/logger"
)

// PacksChannel is the single public channel frontends subscribe to for pack
// lifecycle events.
const PacksChannel = "packs"

type Node struct {
	node *centrifuge.Node
	log  *logger.Logger
}

// NewNode builds a running Centrifuge node. Connections with a bearer token
// are attributed to that user; anonymous connections are allowed, since the
// pack listing is public.
func NewNode(tokenService *auth.TokenService, log *logger.Logger) (*Node, error) {
	node, err := centrifuge.New(centrifuge.Config{
		LogLevel:   centrifuge.LogLevelInfo,
		LogHandler: func(e centrifuge.LogEntry) { log.Debug("centrifuge", "msg", e.Message, "fields", e.Fields) },
	})
	if err != nil {
		return nil, err
	}

	n := &Node{node: node, log: log}

	node.OnConnecting(func(ctx context.Context, e centrifuge.ConnectEvent) (centrifuge.ConnectReply, error) {
		userID := ""
		if e.Token != "" {
			claims, err := tokenService.ValidateAccessToken(e.Token)
			if err != nil {
				return centrifuge.ConnectReply{}, centrifuge.DisconnectInvalidToken
			}
			userID = claims.UserID
		}
		return centrifuge.ConnectReply{
			Credentials: &centrifuge.Credentials{UserID: userID},
		}, nil
	})

	node.OnConnect(func(client *centrifuge.Client) {
		client.OnSubscribe(func(e centrifuge.SubscribeEvent, cb centrifuge.SubscribeCallback) {
			if e.Channel != PacksChannel {
				cb(centrifuge.SubscribeReply{}, centrifuge.ErrorPermissionDenied)
				return
			}
			cb(centrifuge.SubscribeReply{}, nil)
		})
	})

	if err := node.Run(); err != nil {
		return nil, err
	}

	return n, nil
}

// Broadcast publishes an event envelope on the packs channel.
func (n *Node) Broadcast(event string, data interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type": event,
		"data": data,
	})
	if err != nil {
		return err
	}

	_, err = n.node.Publish(PacksChannel, payload)
	return err
}

func (n *Node) Shutdown(ctx context.Context) error {
	return n.node.Shutdown(ctx)
}

func (n *Node) WebsocketHandler() http.Handler {
	return centrifuge.NewWebsocketHandler(n.node, centrifuge.WebsocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	})
}
