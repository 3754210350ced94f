package main

import (
	"strings"
	"testing"
)

func TestBuildCreateViewSQL_StripsDBQualifierAndRewritesIdentifiers(t *testing.T) {
	def := "select `mydb`.`users`.`id` AS `id` from `mydb`.`users`"
	got := buildCreateViewSQL("active_users", def)
	want := `CREATE VIEW IF NOT EXISTS "active_users" AS select "id" AS "id" from "users";`
	if got != want {
		t.Errorf("buildCreateViewSQL() = %q, want %q", got, want)
	}
}

func TestBuildCreateViewSQL_TrimsTrailingSemicolon(t *testing.T) {
	got := buildCreateViewSQL("v", "select 1;")
	if strings.Contains(strings.TrimSuffix(got, ";"), ";") {
		t.Errorf("buildCreateViewSQL() left an internal semicolon: %q", got)
	}
	if !strings.HasSuffix(got, ";") {
		t.Errorf("buildCreateViewSQL() = %q, want single trailing semicolon", got)
	}
}

func TestRewriteBacktickIdentifiers_UnescapesDoubledBacktick(t *testing.T) {
	got := rewriteBacktickIdentifiers("select `weird``col` from `t`")
	want := `select "weird` + "`" + `col" from "t"`
	if got != want {
		t.Errorf("rewriteBacktickIdentifiers() = %q, want %q", got, want)
	}
}

func TestBuildMaterializeAsTableSelectSQL_NoRowCap(t *testing.T) {
	got := buildMaterializeAsTableSelectSQL("weird`view", 0)
	want := "SELECT * FROM `weird``view`"
	if got != want {
		t.Errorf("buildMaterializeAsTableSelectSQL() = %q, want %q", got, want)
	}
}

func TestBuildMaterializeAsTableSelectSQL_WithRowCap(t *testing.T) {
	got := buildMaterializeAsTableSelectSQL("active_users", 50)
	want := "SELECT * FROM `active_users` LIMIT 50"
	if got != want {
		t.Errorf("buildMaterializeAsTableSelectSQL() = %q, want %q", got, want)
	}
}
