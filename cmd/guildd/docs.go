package main

// General API documentation for swaggo.
//
// @title           guildcore admin API
// @version         1.0
// @description     Admin and diagnostics API of the guildcore runtime.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
