package rtmp

import (
	"net"
	"sync"
)

// listener accepts TCP connections and hands them to the server.
type listener struct {
	ln     net.Listener
	wg     *sync.WaitGroup
	parent *Server
}

func (l *listener) initialize() {
	l.wg.Add(1)
	go l.run()
}

func (l *listener) run() {
	defer l.wg.Done()

	for {
		nconn, err := l.ln.Accept()
		if err != nil {
			l.parent.acceptError(err)
			return
		}

		// publishers that disappear without closing the socket
		// are detected by keepalives too, in addition to read timeouts.
		if tc, ok := nconn.(*net.TCPConn); ok {
			tc.SetKeepAlive(true) //nolint:errcheck
		}

		l.parent.newConn(nconn)
	}
}
