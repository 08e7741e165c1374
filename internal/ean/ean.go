// Package ean normaliza códigos de barras para a forma canônica de 13 dígitos.
// Importação, sincronização e contagem usam a MESMA função: os dois caminhos
// precisam normalizar de forma idêntica para o lookup por EAN funcionar.
package ean

import "strings"

// Normalize remove tudo que não for dígito e completa EAN-8/UPC-A
// (8 ou 12 dígitos) com zeros à esquerda até 13. Comprimentos 13 e 14
// passam direto; qualquer outro comprimento é devolvido como está —
// dado degradado é aceito, nunca vira erro. Retorna "" sem dígitos.
func Normalize(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteByte(byte(r))
		}
	}
	digits := sb.String()
	if digits == "" {
		return ""
	}
	switch len(digits) {
	case 8, 12:
		return strings.Repeat("0", 13-len(digits)) + digits
	default:
		return digits
	}
}

// NormalizeOrNil é a variante para os campos que guardam EAN como *string.
func NormalizeOrNil(raw string) *string {
	d := Normalize(raw)
	if d == "" {
		return nil
	}
	return &d
}
