package db

import (
	"testing"

	"github.com/yeisme/docchat/pkg/configs"
)

func TestWithQuery(t *testing.T) {
	if got := withQuery("docchat.db", "a=1"); got != "docchat.db?a=1" {
		t.Errorf("got %q", got)
	}

	if got := withQuery("file:docchat.db?cache=shared", "a=1"); got != "file:docchat.db?cache=shared&a=1" {
		t.Errorf("got %q", got)
	}
}

func TestRegisteredDBTypes(t *testing.T) {
	registered := map[configs.DBType]bool{}
	for _, typ := range GetRegisteredDBTypes() {
		registered[typ] = true
	}

	for _, want := range []configs.DBType{configs.SQLite, configs.MySQL, configs.MariaDB, configs.PostgreSQL} {
		if !registered[want] {
			t.Errorf("dialector for %s not registered", want)
		}
	}
}
