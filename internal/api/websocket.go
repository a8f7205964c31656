// internal/api/websocket.go
package api

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Corphon/LessonPlanner/internal/services"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ProgressClient is one websocket subscribed to a task.
type ProgressClient struct {
	conn      *websocket.Conn
	taskID    string
	closed    int32
	createdAt time.Time
}

// Close is safe to call more than once.
func (client *ProgressClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		client.conn.Close()
	}
}

func (client *ProgressClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// ProgressHub tracks live progress sockets per task.
type ProgressHub struct {
	connections map[string]map[*ProgressClient]bool
	mutex       sync.RWMutex
	logger      *utils.Logger
}

func NewProgressHub(logger *utils.Logger) *ProgressHub {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &ProgressHub{
		connections: make(map[string]map[*ProgressClient]bool),
		logger:      logger,
	}
}

func (hub *ProgressHub) register(client *ProgressClient) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if hub.connections[client.taskID] == nil {
		hub.connections[client.taskID] = make(map[*ProgressClient]bool)
	}
	hub.connections[client.taskID][client] = true
	hub.logger.Debug("progress socket connected", "task_id", client.taskID)
}

func (hub *ProgressHub) unregister(client *ProgressClient) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if clients, ok := hub.connections[client.taskID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(hub.connections, client.taskID)
		}
	}
	client.Close()
	hub.logger.Debug("progress socket closed", "task_id", client.taskID)
}

// Serve streams tracker frames to conn until the task ends or the peer
// goes away. It owns conn.
func (hub *ProgressHub) Serve(conn *websocket.Conn, tracker *services.ProgressTracker) {
	client := &ProgressClient{conn: conn, taskID: tracker.TaskID, createdAt: time.Now()}
	hub.register(client)
	defer hub.unregister(client)

	updates := tracker.Subscribe()
	defer tracker.Unsubscribe(updates)

	// The read loop only exists to notice close frames and pongs.
	gone := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(update); err != nil {
				return
			}
			if update.Status == services.StatusCompleted || update.Status == services.StatusFailed {
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, update.Status))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Shutdown closes every socket.
func (hub *ProgressHub) Shutdown() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for _, clients := range hub.connections {
		for client := range clients {
			client.Close()
		}
	}
	hub.connections = make(map[string]map[*ProgressClient]bool)
}

// GetStatus reports open sockets per task.
func (hub *ProgressHub) GetStatus() map[string]interface{} {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	tasks := make(map[string]interface{})
	total := 0
	for taskID, clients := range hub.connections {
		active := 0
		for client := range clients {
			if !client.IsClosed() {
				active++
			}
		}
		tasks[taskID] = active
		total += active
	}
	return map[string]interface{}{
		"total_tasks":       len(hub.connections),
		"total_connections": total,
		"tasks":             tasks,
	}
}
