package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/tugofwar/network"
)

// send formats and sends one event frame to the server.
func send(c *websocket.Conn, event string, data interface{}) error {
	frame, err := network.EncodePacket(event, data)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, frame)
}

// command turns one stdin line into an outbound event.
func command(line, name string) (string, interface{}, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, false
	}
	switch fields[0] {
	case "create":
		return network.EventCreateLobby, name, true
	case "join":
		if len(fields) < 2 {
			return "", nil, false
		}
		return network.EventJoinLobby, map[string]string{"name": name, "code": fields[1]}, true
	case "answer", "a":
		if len(fields) < 2 {
			return "", nil, false
		}
		return network.EventSubmitAnswer, fields[1], true
	}
	// a bare number is an answer
	return network.EventSubmitAnswer, fields[0], true
}

func main() {
	host := flag.String("addr", "localhost:3000", "server address")
	name := flag.String("name", "Pemain", "player name")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			packet, err := network.DecodePacket(message)
			if err != nil {
				log.Printf("Received invalid frame: %v", err)
				continue
			}
			log.Printf("<- %s: %s", packet.Event, string(packet.Data))
		}
	}()

	lines := make(chan string)
	go func() {
		reader := bufio.NewScanner(os.Stdin)
		for reader.Scan() {
			lines <- reader.Text()
		}
		close(lines)
	}()

	log.Println("Commands: create | join <code> | answer <n> (or just <n>)")

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			event, data, ok := command(line, *name)
			if !ok {
				log.Println("Unknown command")
				continue
			}
			if err := send(c, event, data); err != nil {
				log.Println("Write error:", err)
				return
			}
			raw, _ := json.Marshal(data)
			log.Printf("-> %s: %s", event, raw)
		}
	}
}
