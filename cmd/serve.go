package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leftmike/nquery/repl"
	"github.com/leftmike/nquery/server"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve queries using the PostgreSQL wire protocol and SSH",
		Args:  cobra.NoArgs,
		RunE:  serveRun,
	}

	proto3Address  = "localhost:5432"
	sshServer      = false
	sshAddress     = "localhost:8241"
	authorizedKeys = ""
	hostKeys       = []string{"id_rsa"}
)

func init() {
	fs := serveCmd.Flags()

	fs.StringVar(&proto3Address, "proto3", proto3Address,
		"`address` used to serve PostgreSQL wire protocol v3")
	cfgVars["proto3"] = fs.Lookup("proto3")

	fs.BoolVar(&sshServer, "ssh", sshServer, "`flag` to control serving SSH")
	cfgVars["ssh"] = fs.Lookup("ssh")

	fs.StringVar(&sshAddress, "ssh-address", sshAddress, "`address` used to serve SSH")
	cfgVars["ssh-address"] = fs.Lookup("ssh-address")

	fs.StringVar(&authorizedKeys, "ssh-authorized-keys", authorizedKeys,
		"`file` containing authorized ssh keys")
	cfgVars["ssh-authorized-keys"] = fs.Lookup("ssh-authorized-keys")

	fs.StringSliceVar(&hostKeys, "ssh-host-key", hostKeys,
		"`file` containing a ssh host key; multiple allowed")
	cfgVars["ssh-host-keys"] = fs.Lookup("ssh-host-key")

	cfgVars["accounts"] = nil

	nqueryCmd.AddCommand(serveCmd)
}

func userAccounts() map[string]string {
	val := cfg["accounts"]
	if val == nil {
		return nil
	}
	var accounts []map[string]interface{}
	switch val := val.(type) {
	case []map[string]interface{}:
		accounts = val
	case []interface{}:
		for _, obj := range val {
			account, ok := obj.(map[string]interface{})
			if !ok {
				return nil
			}
			accounts = append(accounts, account)
		}
	default:
		return nil
	}

	userPasswords := map[string]string{}
	for _, account := range accounts {
		user, ok := account["user"].(string)
		if !ok {
			return nil
		}
		password, ok := account["password"].(string)
		if !ok {
			return nil
		}
		userPasswords[user] = password
	}

	return userPasswords
}

func sshConfig() (server.SSHConfig, error) {
	sshCfg := server.SSHConfig{
		Address: sshAddress,
	}

	for _, hostKey := range hostKeys {
		keyBytes, err := os.ReadFile(hostKey)
		if err != nil {
			return sshCfg, fmt.Errorf("nquery: host keys: %s", err)
		}
		sshCfg.HostKeysBytes = append(sshCfg.HostKeysBytes, keyBytes)
	}

	if authorizedKeys != "" {
		var err error
		sshCfg.AuthorizedBytes, err = os.ReadFile(authorizedKeys)
		if err != nil {
			return sshCfg, fmt.Errorf("nquery: authorized keys: %s", err)
		}
	}

	userPasswords := userAccounts()
	if len(userPasswords) > 0 {
		sshCfg.CheckPassword = func(user, password string) error {
			pw, ok := userPasswords[user]
			if !ok {
				return fmt.Errorf("user %s not found", user)
			}
			if password != pw {
				return fmt.Errorf("bad password for user %s", user)
			}
			return nil
		}
	}

	return sshCfg, nil
}

func serveRun(cmd *cobra.Command, args []string) error {
	svr := &server.Server{
		Handler: func(ses *server.Session, rr io.RuneReader, w io.Writer) {
			repl.ReplSQL(context.Background(), ses.DataContext, ses.Flags, rr, w)
		},
		DataContext: dataContext(),
		Flags:       flgs,
	}

	go func() {
		err := svr.ListenAndServeProto3(server.Proto3Config{Address: proto3Address})
		if err != server.ErrServerClosed {
			log.WithField("error", err.Error()).Error("serve proto3")
			fmt.Fprintf(os.Stderr, "nquery: %s\n", err)
		}
	}()

	if sshServer {
		sshCfg, err := sshConfig()
		if err != nil {
			svr.Close()
			return err
		}

		go func() {
			err := svr.ListenAndServeSSH(sshCfg)
			if err != server.ErrServerClosed {
				log.WithField("error", err.Error()).Error("serve ssh")
				fmt.Fprintf(os.Stderr, "nquery: %s\n", err)
			}
		}()
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	fmt.Println("nquery: waiting for ^C to shutdown")
	<-ch
	go func() {
		<-ch
		os.Exit(0)
	}()

	fmt.Println("nquery: shutting down")
	return svr.Shutdown(context.Background())
}
