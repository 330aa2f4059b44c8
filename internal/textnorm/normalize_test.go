package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase", "Python AND Go", "python and go"},
		{"punctuation", "docker, kubernetes; terraform!", "docker kubernetes terraform"},
		{"accents", "Programação em São Paulo", "programacao em sao paulo"},
		{"whitespace collapse", "  python \t\n aws  ", "python aws"},
		{"digits kept", "java 8 spring", "java 8 spring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_idempotent(t *testing.T) {
	inputs := []string{"", "Olá, Mundo!", "PYTHON/aws docker", "a  b\tc", "Müller & Söhne"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Backend Engineer - 1234", "Backend Engineer"},
		{"Backend Engineer-99", "Backend Engineer"},
		{"Data Analyst", "Data Analyst"},
		{"QA - Senior", "QA - Senior"},
		{"Dev - 12 - 34", "Dev - 12"},
	}
	for _, tt := range tests {
		if got := CleanTitle(tt.in); got != tt.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Python, AWS e Docker!")
	want := []string{"python", "aws", "e", "docker"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
	if Tokenize("...") != nil {
		t.Error("punctuation-only text should tokenize to nil")
	}
}
