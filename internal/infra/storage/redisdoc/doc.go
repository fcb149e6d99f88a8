// Package redisdoc реализует storage adapter поверх Redis как
// ревизионное документное хранилище: каждая сущность - JSON документ
// со встроенным полем rev, условная запись выполняется Lua скриптом
// compare-and-swap, атомарным на стороне Redis.
package redisdoc
